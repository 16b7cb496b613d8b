package analysis

import "github.com/ingredientlens/backend/internal/domain"

// FormatProductAnalysis merges a product's classification, percentages and
// environmental data into a per-ingredient report with grouped summaries.
func FormatProductAnalysis(product *domain.Product) (*domain.FormattedAnalysis, error) {
	if product == nil || product.IngredientAnalysis == nil {
		return nil, domain.ErrNoAnalysis
	}

	analysis := product.IngredientAnalysis
	env := analysis.EnvironmentalImpact

	var impacts []domain.IngredientImpact
	if env != nil {
		impacts = env.Analysis
	}

	ingredients := make([]domain.FormattedIngredient, 0, len(analysis.Classification))
	natural := domain.IngredientGroup{Percentage: analysis.Percentages.Natural, Ingredients: []string{}}
	synthetic := domain.IngredientGroup{Percentage: analysis.Percentages.Synthetic, Ingredients: []string{}}

	for _, c := range analysis.Classification {
		row := domain.FormattedIngredient{Name: c.Ingredient, Type: c.Label}
		if record, ok := findImpact(impacts, normalize(c.Ingredient)); ok {
			impact := record.Impact
			row.EnvironmentalImpact = &impact
		}
		ingredients = append(ingredients, row)

		switch {
		case isNatural(c.Label):
			natural.Ingredients = append(natural.Ingredients, c.Ingredient)
		case isSynthetic(c.Label):
			synthetic.Ingredients = append(synthetic.Ingredients, c.Ingredient)
		}
	}
	natural.Count = len(natural.Ingredients)
	synthetic.Count = len(synthetic.Ingredients)

	environmental := domain.EnvironmentalSummary{
		HighImpactIngredients: []string{},
		LowImpactIngredients:  []string{},
	}
	if env != nil {
		environmental.AverageBiodegradability = env.OverallImpact.AverageBiodegradability
		environmental.AverageToxicity = env.OverallImpact.AverageToxicity
		environmental.AverageSustainability = env.OverallImpact.AverageSustainability
		environmental.OverallScore = env.OverallImpact.OverallScore

		for _, record := range env.Analysis {
			score, ok := IngredientScore(record.Impact)
			if !ok {
				continue
			}
			switch {
			case score >= HighImpactThreshold:
				environmental.HighImpactIngredients = append(environmental.HighImpactIngredients, record.Ingredient)
			case score <= LowImpactThreshold:
				environmental.LowImpactIngredients = append(environmental.LowImpactIngredients, record.Ingredient)
			}
		}
	}

	return &domain.FormattedAnalysis{
		Ingredients: ingredients,
		Summary: domain.AnalysisSummary{
			Natural:       natural,
			Synthetic:     synthetic,
			Environmental: environmental,
		},
		DataTier: product.DataTier,
	}, nil
}
