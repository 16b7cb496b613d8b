package analysis

import "github.com/ingredientlens/backend/internal/domain"

// CalculatePercentages returns the share of natural and synthetic labels over
// every classified ingredient. Labels other than the canonical two count in
// the total but toward neither share, so the result may sum to less than 100.
func CalculatePercentages(classification []domain.Classification) (domain.Percentages, error) {
	total := len(classification)
	if total == 0 {
		return domain.Percentages{}, domain.ErrEmptyClassification
	}

	var natural, synthetic int
	for _, c := range classification {
		switch {
		case isNatural(c.Label):
			natural++
		case isSynthetic(c.Label):
			synthetic++
		}
	}

	return domain.Percentages{
		Natural:   float64(natural) / float64(total) * 100,
		Synthetic: float64(synthetic) / float64(total) * 100,
	}, nil
}
