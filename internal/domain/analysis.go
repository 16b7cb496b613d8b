package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Canonical classification labels. The oracle may answer with other free text.
const (
	LabelNatural   = "natural"
	LabelSynthetic = "synthetic"
)

// Classification pairs an ingredient name with the label the oracle gave it.
// It is encoded as a two element JSON array: ["water", "natural"].
type Classification struct {
	Ingredient string
	Label      string
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.Ingredient, c.Label})
}

func (c *Classification) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("classification pair has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Ingredient); err != nil {
		return fmt.Errorf("classification ingredient: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Label); err != nil {
		return fmt.Errorf("classification label: %w", err)
	}
	return nil
}

// Percentages holds the natural and synthetic shares of a classification, 0-100.
// They need not sum to 100 when the oracle used non-canonical labels.
type Percentages struct {
	Natural   float64 `json:"natural"`
	Synthetic float64 `json:"synthetic"`
}

// EnvironmentalImpact is the oracle's categorical assessment of one ingredient
type EnvironmentalImpact struct {
	Biodegradability string `json:"biodegradability"` // high | medium | low
	Toxicity         string `json:"toxicity"`         // low | moderate | high
	Sustainability   string `json:"sustainability"`   // sustainable | moderate | unsustainable
	Notes            string `json:"notes"`
}

// IngredientImpact is one record of an environmental analysis
type IngredientImpact struct {
	Ingredient string              `json:"ingredient"`
	Impact     EnvironmentalImpact `json:"impact"`
}

// OverallImpact aggregates per-axis scores across all scorable ingredients
type OverallImpact struct {
	AverageBiodegradability float64  `json:"averageBiodegradability"`
	AverageToxicity         float64  `json:"averageToxicity"`
	AverageSustainability   float64  `json:"averageSustainability"`
	OverallScore            float64  `json:"overallScore"`
	Analyzed                int      `json:"analyzed"`
	Skipped                 []string `json:"skipped,omitempty"`
}

// EnvironmentalReport is the environmental part of an ingredient analysis
type EnvironmentalReport struct {
	Analysis      []IngredientImpact `json:"analysis"`
	OverallImpact OverallImpact      `json:"overallImpact"`
}

// IngredientAnalysis is attached to a product once its ingredients were classified
type IngredientAnalysis struct {
	Classification      []Classification     `json:"classification"`
	Percentages         Percentages          `json:"percentages"`
	EnvironmentalImpact *EnvironmentalReport `json:"environmentalImpact,omitempty"`
}

// Validation issue types
const (
	IssueClassification = "classification"
	IssueEnvironmental  = "environmental"
)

// ValidationIssue describes one problem found while cross-checking an analysis
type ValidationIssue struct {
	Ingredient string `json:"ingredient"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

// ValidationResult is the outcome of validating a product's analysis
type ValidationResult struct {
	IsValid    bool              `json:"isValid"`
	Confidence float64           `json:"confidence"`
	Issues     []ValidationIssue `json:"issues"`
}

// FormattedIngredient is a single row of the formatted report
type FormattedIngredient struct {
	Name                string               `json:"name"`
	Type                string               `json:"type"`
	EnvironmentalImpact *EnvironmentalImpact `json:"environmentalImpact,omitempty"`
}

// IngredientGroup summarizes the ingredients sharing a label
type IngredientGroup struct {
	Count       int      `json:"count"`
	Percentage  float64  `json:"percentage"`
	Ingredients []string `json:"ingredients"`
}

// EnvironmentalSummary is the environmental block of a formatted report
type EnvironmentalSummary struct {
	AverageBiodegradability float64  `json:"averageBiodegradability"`
	AverageToxicity         float64  `json:"averageToxicity"`
	AverageSustainability   float64  `json:"averageSustainability"`
	OverallScore            float64  `json:"overallScore"`
	HighImpactIngredients   []string `json:"highImpactIngredients"`
	LowImpactIngredients    []string `json:"lowImpactIngredients"`
}

// AnalysisSummary groups the formatted report by category
type AnalysisSummary struct {
	Natural       IngredientGroup      `json:"natural"`
	Synthetic     IngredientGroup      `json:"synthetic"`
	Environmental EnvironmentalSummary `json:"environmental"`
}

// FormattedAnalysis is the merged per-product report
type FormattedAnalysis struct {
	Ingredients []FormattedIngredient `json:"ingredients"`
	Summary     AnalysisSummary       `json:"summary"`
	DataTier    DataTier              `json:"dataTier,omitempty"`
}

// AnalysisReport is returned by an ad-hoc ingredient analysis
type AnalysisReport struct {
	Classification      []Classification    `json:"classification"`
	Percentages         Percentages         `json:"percentages"`
	EnvironmentalImpact EnvironmentalReport `json:"environmentalImpact"`
	FormattedAnalysis   *FormattedAnalysis  `json:"formattedAnalysis"`
	ValidationResult    ValidationResult    `json:"validationResult"`
}
