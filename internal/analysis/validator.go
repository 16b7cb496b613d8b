package analysis

import (
	"math"
	"strings"

	"github.com/ingredientlens/backend/internal/domain"
)

// MinValidConfidence is the aggregate confidence a valid analysis must reach
const MinValidConfidence = 0.8

const (
	baseConfidence    = 0.5
	patternBoost      = 0.1
	maxConfidence     = 1.0
	noAnalysisSubject = "all"
)

var knownNatural = toSet(
	"water", "aloe", "coconut", "shea", "jojoba", "argan", "olive", "sunflower",
	"rose", "lavender", "chamomile", "green tea", "vitamin e", "vitamin c",
	"hyaluronic acid", "squalane", "ceramide", "collagen", "peptide", "citric acid",
)

var knownSynthetic = toSet(
	"paraben", "sulfate", "silicone", "petrolatum", "mineral oil", "propylene glycol",
	"butylene glycol", "phenoxyethanol", "ethylhexylglycerin", "caprylyl glycol",
	"benzyl alcohol", "dehydroacetic acid", "sorbic acid", "benzoic acid", "glycerin",
	"lactic acid", "glycolic acid", "salicylic acid", "retinol", "niacinamide",
)

// dualSource ingredients can legitimately come from either origin
var dualSource = toSet(
	"glycerin", "hyaluronic acid", "vitamin e", "vitamin c", "retinol", "niacinamide",
)

var naturalSuffixes = []string{
	"extract", "oil", "butter", "powder", "seed", "fruit", "flower", "leaf", "root", "bark",
}

var syntheticSuffixes = []string{
	"ate", "ide", "one", "ol", "ic acid", "yl", "ene", "ium",
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

// ValidateProduct cross-checks a product's classification against curated
// ingredient lists and its environmental data for completeness.
func ValidateProduct(product *domain.Product) domain.ValidationResult {
	if product == nil || product.IngredientAnalysis == nil {
		return domain.ValidationResult{
			IsValid:    false,
			Confidence: 0,
			Issues: []domain.ValidationIssue{{
				Ingredient: noAnalysisSubject,
				Type:       domain.IssueClassification,
				Message:    "No ingredient analysis available",
			}},
		}
	}

	analysis := product.IngredientAnalysis
	issues := []domain.ValidationIssue{}
	var total float64

	for _, c := range analysis.Classification {
		name := normalize(c.Ingredient)

		total += classificationConfidence(name, c.Label)
		if issue, ok := classificationIssue(c, name); ok {
			issues = append(issues, issue)
		}

		if analysis.EnvironmentalImpact != nil {
			if issue, ok := environmentalIssue(c.Ingredient, name, analysis.EnvironmentalImpact.Analysis); ok {
				issues = append(issues, issue)
			}
		}
	}

	var confidence float64
	if n := len(analysis.Classification); n > 0 {
		confidence = total / float64(n)
	}

	return domain.ValidationResult{
		IsValid:    len(issues) == 0 && confidence >= MinValidConfidence,
		Confidence: confidence,
		Issues:     issues,
	}
}

// acceptedDualSourceLabel reports whether label is one the oracle may use for a dual-source ingredient
func acceptedDualSourceLabel(label string) bool {
	l := normalize(label)
	return l == domain.LabelNatural || l == domain.LabelSynthetic ||
		strings.Contains(l, "both") || strings.Contains(l, "can be")
}

func classificationConfidence(name, label string) float64 {
	natural, synthetic := isNatural(label), isSynthetic(label)

	if natural && inSet(knownNatural, name) {
		return maxConfidence
	}
	if synthetic && inSet(knownSynthetic, name) {
		return maxConfidence
	}
	if inSet(dualSource, name) && acceptedDualSourceLabel(label) {
		return maxConfidence
	}

	confidence := baseConfidence
	switch {
	case natural:
		confidence += patternBoost * float64(countSuffixes(name, naturalSuffixes))
	case synthetic:
		confidence += patternBoost * float64(countSuffixes(name, syntheticSuffixes))
	}

	return math.Min(confidence, maxConfidence)
}

func countSuffixes(name string, suffixes []string) int {
	n := 0
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			n++
		}
	}
	return n
}

func classificationIssue(c domain.Classification, name string) (domain.ValidationIssue, bool) {
	issue := domain.ValidationIssue{Ingredient: c.Ingredient, Type: domain.IssueClassification}

	if inSet(dualSource, name) {
		if acceptedDualSourceLabel(c.Label) {
			return issue, false
		}
		issue.Message = "Ambiguous ingredient classified with an unexpected value"
		return issue, true
	}

	switch {
	case isNatural(c.Label) && inSet(knownSynthetic, name):
		issue.Message = "Known synthetic ingredient classified as natural"
		return issue, true
	case isSynthetic(c.Label) && inSet(knownNatural, name):
		issue.Message = "Known natural ingredient classified as synthetic"
		return issue, true
	}

	return issue, false
}

func environmentalIssue(ingredient, name string, records []domain.IngredientImpact) (domain.ValidationIssue, bool) {
	issue := domain.ValidationIssue{Ingredient: ingredient, Type: domain.IssueEnvironmental}

	record, found := findImpact(records, name)
	if !found {
		issue.Message = "Missing environmental impact data"
		return issue, true
	}

	impact := record.Impact
	if strings.TrimSpace(impact.Biodegradability) == "" ||
		strings.TrimSpace(impact.Toxicity) == "" ||
		strings.TrimSpace(impact.Sustainability) == "" {
		issue.Message = "Incomplete environmental impact data"
		return issue, true
	}

	return issue, false
}

// findImpact returns the first record whose ingredient matches name case-insensitively
func findImpact(records []domain.IngredientImpact, name string) (domain.IngredientImpact, bool) {
	for _, r := range records {
		if normalize(r.Ingredient) == name {
			return r, true
		}
	}
	return domain.IngredientImpact{}, false
}
