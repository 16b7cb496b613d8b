package analysis

import "github.com/ingredientlens/backend/internal/domain"

// Composite score weights
const (
	WeightBiodegradability = 0.4
	WeightToxicity         = 0.3
	WeightSustainability   = 0.3
)

// Per-ingredient score thresholds used by the formatter
const (
	HighImpactThreshold = 2.5
	LowImpactThreshold  = 1.5
)

var (
	biodegradabilityScores = map[string]float64{"high": 3, "medium": 2, "low": 1}
	toxicityScores         = map[string]float64{"low": 3, "moderate": 2, "high": 1}
	sustainabilityScores   = map[string]float64{"sustainable": 3, "moderate": 2, "unsustainable": 1}
)

// AxisScores maps the three categorical impact values to 1-3 scores.
// ok is false when any value is missing or outside its vocabulary.
func AxisScores(impact domain.EnvironmentalImpact) (biodegradability, toxicity, sustainability float64, ok bool) {
	b, okB := biodegradabilityScores[normalize(impact.Biodegradability)]
	t, okT := toxicityScores[normalize(impact.Toxicity)]
	s, okS := sustainabilityScores[normalize(impact.Sustainability)]
	if !okB || !okT || !okS {
		return 0, 0, 0, false
	}
	return b, t, s, true
}

// CompositeScore blends the three axis scores with the 0.4/0.3/0.3 weights
func CompositeScore(biodegradability, toxicity, sustainability float64) float64 {
	return biodegradability*WeightBiodegradability +
		toxicity*WeightToxicity +
		sustainability*WeightSustainability
}

// IngredientScore is the composite score of a single impact record
func IngredientScore(impact domain.EnvironmentalImpact) (float64, bool) {
	b, t, s, ok := AxisScores(impact)
	if !ok {
		return 0, false
	}
	return CompositeScore(b, t, s), true
}

// CalculateOverallImpact averages each axis over every scorable record and
// derives the overall composite from those averages. Records with an unknown
// or missing axis value are listed in Skipped and left out of the averages.
func CalculateOverallImpact(analyses []domain.IngredientImpact) (domain.OverallImpact, error) {
	var result domain.OverallImpact
	var sumB, sumT, sumS float64

	for _, a := range analyses {
		b, t, s, ok := AxisScores(a.Impact)
		if !ok {
			result.Skipped = append(result.Skipped, a.Ingredient)
			continue
		}
		sumB += b
		sumT += t
		sumS += s
		result.Analyzed++
	}

	if result.Analyzed == 0 {
		return result, domain.ErrNoImpactData
	}

	n := float64(result.Analyzed)
	result.AverageBiodegradability = sumB / n
	result.AverageToxicity = sumT / n
	result.AverageSustainability = sumS / n
	result.OverallScore = CompositeScore(result.AverageBiodegradability, result.AverageToxicity, result.AverageSustainability)

	return result, nil
}

// BuildEnvironmentalReport pairs the raw analysis with its aggregate
func BuildEnvironmentalReport(analyses []domain.IngredientImpact) (*domain.EnvironmentalReport, error) {
	overall, err := CalculateOverallImpact(analyses)
	if err != nil {
		return nil, err
	}
	return &domain.EnvironmentalReport{Analysis: analyses, OverallImpact: overall}, nil
}
