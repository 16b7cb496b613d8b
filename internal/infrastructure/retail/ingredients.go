package retail

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for ingredient parsing
var (
	htmlTagRegex       = regexp.MustCompile(`</?[^>]+(>|$)`)
	decodedTagRegex    = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	ingredientSepRegex = regexp.MustCompile(`[,;]`)
	bulletPrefixRegex  = regexp.MustCompile(`^[*•]+`)
	wordPrefixRegex    = regexp.MustCompile(`^[A-Za-z]+\.\s+`)
	wrappingQuoteRegex = regexp.MustCompile(`^\s*['"]|['"]\s*$`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)
)

// entityReplacer decodes the entities retail pages use in ingredient blurbs
var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
	"&apos;", "'",
)

// ParseIngredients turns a raw ingredient description into an ordered list of
// clean ingredient names. Order and duplicates are preserved.
func ParseIngredients(desc string) []string {
	if strings.TrimSpace(desc) == "" {
		return []string{}
	}

	clean := stripMarkup(desc)

	ingredients := make([]string, 0)
	for _, token := range ingredientSepRegex.Split(clean, -1) {
		if name := cleanIngredient(token); name != "" {
			ingredients = append(ingredients, name)
		}
	}

	return ingredients
}

// stripMarkup strips tags from the raw text and decodes entities. Decoded text
// may be a literal "<1%", so later passes only remove well-formed tags, which
// still catches double-escaped blurbs ("&amp;lt;b&amp;gt;").
// Every pass that changes the text makes it shorter, so the loop ends.
func stripMarkup(s string) string {
	s = entityReplacer.Replace(htmlTagRegex.ReplaceAllString(s, ""))
	for {
		next := entityReplacer.Replace(decodedTagRegex.ReplaceAllString(s, ""))
		if next == s {
			return next
		}
		s = next
	}
}

// cleanIngredient normalizes a single token, returning "" when nothing is left.
func cleanIngredient(token string) string {
	name := strings.TrimSpace(token)
	if name == "" {
		return ""
	}

	name = strings.TrimSpace(bulletPrefixRegex.ReplaceAllString(name, ""))
	name = wordPrefixRegex.ReplaceAllString(name, "")
	name = wrappingQuoteRegex.ReplaceAllString(name, "")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	// the last ingredient of a list usually carries the sentence's full stop
	name = strings.TrimSpace(strings.TrimSuffix(name, "."))

	return name
}

// normalizeIngredients cleans ingredient names that arrive already split,
// such as the optional list on a catalog search hit.
func normalizeIngredients(raw []string) []string {
	ingredients := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, name := range ParseIngredients(item) {
			ingredients = append(ingredients, name)
		}
	}
	return ingredients
}
