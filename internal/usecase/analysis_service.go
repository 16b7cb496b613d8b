package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ingredientlens/backend/internal/analysis"
	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/pkg/logger"
)

const adHocProductName = "Temporary Analysis"

// AnalysisService analyzes an ad-hoc ingredient list without touching the catalog or cache
type AnalysisService struct {
	oracle domain.IngredientOracle
	log    zerolog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(oracle domain.IngredientOracle, log zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		oracle: oracle,
		log:    logger.Component(log, "analysis"),
	}
}

// Analyze classifies the ingredients, scores their environmental impact and
// returns the formatted and validated report.
func (s *AnalysisService) Analyze(ctx context.Context, ingredients []string) (*domain.AnalysisReport, error) {
	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: ingredients list is required", domain.ErrInvalidRequest)
	}

	classification, err := s.oracle.ClassifyIngredients(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	percentages, err := analysis.CalculatePercentages(classification)
	if err != nil {
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisParseError,
			Message: "Oracle returned an empty classification",
			Err:     err,
		}
	}

	impacts, err := s.oracle.AnalyzeEnvironmentalImpact(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	overall, err := analysis.CalculateOverallImpact(impacts)
	if err != nil && !errors.Is(err, domain.ErrNoImpactData) {
		return nil, err
	}
	if err != nil {
		s.log.Warn().Strs("skipped", overall.Skipped).Msg("no scorable environmental records")
	}
	environmental := domain.EnvironmentalReport{Analysis: impacts, OverallImpact: overall}

	product := &domain.Product{
		ID:          "temp",
		Name:        adHocProductName,
		Ingredients: cleaned,
		IngredientAnalysis: &domain.IngredientAnalysis{
			Classification:      classification,
			Percentages:         percentages,
			EnvironmentalImpact: &environmental,
		},
	}

	formatted, err := analysis.FormatProductAnalysis(product)
	if err != nil {
		return nil, err
	}
	validation := analysis.ValidateProduct(product)

	s.log.Info().
		Int("ingredients", len(cleaned)).
		Float64("confidence", validation.Confidence).
		Bool("valid", validation.IsValid).
		Msg("analyzed ingredients")

	return &domain.AnalysisReport{
		Classification:      classification,
		Percentages:         percentages,
		EnvironmentalImpact: environmental,
		FormattedAnalysis:   formatted,
		ValidationResult:    validation,
	}, nil
}
