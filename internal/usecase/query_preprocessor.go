package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// maxQueryLength bounds the query sent to the catalog search
const maxQueryLength = 100

// Compiled regex patterns for query preprocessing
var (
	// Matches size patterns like "1.7 oz", "50 ml", "0.5 fl oz". Single-letter
	// units are left alone since they collide with names ("No 5 L'Eau").
	sizeQuantityPattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:fl\.?\s*oz|oz|ml)\b`)

	// Matches pack/count patterns like "3 pack", "pack of 2", "set of 3", "2-count"
	packCountPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(?:pack|pk|count|ct|piece|pc)s?\b|\b(?:pack|set)\s+of\s+\d+\b`)

	// Punctuation left dangling at either end once a size was removed
	orphanedPunctuationPattern = regexp.MustCompile(`[,\-;:/]+\s*$|^\s*[,\-;:/]+`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// QueryPreprocessor cleans a user query before it is sent to the catalog search.
// The cache is still keyed by the query as the caller gave it.
type QueryPreprocessor struct {
	log zerolog.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(log zerolog.Logger) *QueryPreprocessor {
	return &QueryPreprocessor{log: log}
}

// PreprocessQuery removes sizes and pack counts, then normalizes whitespace.
// Words are never dropped, so brand and product names reach the search
// intact. When nothing is left the trimmed input is returned.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	original := strings.TrimSpace(query)
	if original == "" {
		return ""
	}

	cleaned := sizeQuantityPattern.ReplaceAllString(original, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = orphanedPunctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		cleaned = multiSpacePattern.ReplaceAllString(original, " ")
	}

	if len(cleaned) > maxQueryLength {
		cleaned = cleaned[:maxQueryLength]
		// Try to cut at word boundary
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	if cleaned != original {
		p.log.Debug().Str("input", original).Str("output", cleaned).Msg("preprocessed query")
	}

	return cleaned
}
