package provider

import (
	"context"
	"fmt"

	"github.com/bizlens/competitor-insights/internal/model"
)

// MockLLMProvider produces a deterministic canned analysis derived from
// the input's completeness signals, for development and test
// reproducibility.
type MockLLMProvider struct{}

// NewMockLLMProvider creates a mock analyst.
func NewMockLLMProvider() *MockLLMProvider { return &MockLLMProvider{} }

// Name implements LLMProvider.
func (m *MockLLMProvider) Name() string { return "mock" }

// Analyze implements LLMProvider.
func (m *MockLLMProvider) Analyze(_ context.Context, input AnalysisInput) (*AnalysisResult, error) {
	p := input.UserProfile

	var strengths, weaknesses []string
	if model.CountPositive(p.RatingCount) {
		strengths = append(strengths, "Customers are already leaving reviews")
	}
	if model.BoolField(p.HasHours) {
		strengths = append(strengths, "Business hours are listed")
	} else {
		weaknesses = append(weaknesses, "No business hours listed")
	}
	if model.BoolField(p.HasDescription) {
		strengths = append(strengths, "Profile has a business description")
	} else {
		weaknesses = append(weaknesses, "Missing business description")
	}
	if !model.BoolField(p.HasMenuLink) {
		weaknesses = append(weaknesses, "No menu or services link")
	}
	if !model.BoolField(p.HasPriceLevel) {
		weaknesses = append(weaknesses, "No price level information")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Room to stand out as the profile grows")
	}

	position := "Leading the compared set on profile completeness"
	if input.UserScore.Rank > 1 {
		position = fmt.Sprintf("Ranked %d of %d on profile completeness with room to improve",
			input.UserScore.Rank, len(input.Competitors)+1)
	}

	summary := model.AnalysisSummary{
		Overview: fmt.Sprintf("%s competes with %d similar businesses in the area",
			p.Name, len(input.Competitors)),
		Strengths:           strengths,
		Weaknesses:          weaknesses,
		CompetitivePosition: position,
	}

	return &AnalysisResult{
		Summary:     summary,
		Suggestions: fallbackSuggestions(input),
		TokensUsed:  0,
		Model:       "canned-v1",
		Provider:    m.Name(),
	}, nil
}
