package analysis

import (
	"strings"

	"github.com/ingredientlens/backend/internal/domain"
)

// normalize lowercases and trims an ingredient name, label or impact value
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isNatural reports whether label is the canonical natural label, ignoring case and padding
func isNatural(label string) bool {
	return normalize(label) == domain.LabelNatural
}

func isSynthetic(label string) bool {
	return normalize(label) == domain.LabelSynthetic
}
