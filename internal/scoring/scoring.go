// Package scoring computes profile completeness scores and rank ordering
// for a comparison set. Scoring is a pure function of its input: the same
// profiles in the same order always produce identical scores and ranks.
package scoring

import (
	"math"
	"sort"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
)

// Weights controls the contribution of each profile-quality signal on a
// 0-1 scale before the final x100 conversion.
type Weights struct {
	// PerBooleanField is added for each of the four completeness booleans
	// that is true (has_hours, has_description, has_menu_link,
	// has_price_level).
	PerBooleanField float64 `yaml:"per_boolean_field" mapstructure:"per_boolean_field"`

	// ReviewBonus is added once when rating_count > 0.
	ReviewBonus float64 `yaml:"review_bonus" mapstructure:"review_bonus"`

	// ImageBonus is added once when image_count > 0.
	ImageBonus float64 `yaml:"image_bonus" mapstructure:"image_bonus"`
}

// DefaultWeights returns the standard completeness weighting: four boolean
// fields at 1/4 each plus 0.1 bonuses for reviews and images, clamped to 1.0.
func DefaultWeights() Weights {
	return Weights{
		PerBooleanField: 0.25,
		ReviewBonus:     0.1,
		ImageBonus:      0.1,
	}
}

// Engine scores and ranks sets of business profiles.
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine. Zero-valued weights fall back to
// the defaults.
func NewEngine(w Weights) *Engine {
	if w.PerBooleanField <= 0 {
		w = DefaultWeights()
	}
	return &Engine{weights: w}
}

// Score computes completeness scores and 1-based ranks for the given
// profiles. Ranks are assigned by score descending; ties keep the input
// order (stable sort), so the caller's ordering is the tie-break policy.
// An empty input is rejected.
func (e *Engine) Score(profiles []model.BusinessProfile) ([]model.ProfileScore, error) {
	if len(profiles) == 0 {
		return nil, &errs.InvalidInputError{Field: "profiles", Message: "at least one profile is required"}
	}

	scores := make([]model.ProfileScore, len(profiles))
	order := make([]int, len(profiles))
	for i, p := range profiles {
		scores[i].CompletenessScore = e.Completeness(p)
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]].CompletenessScore > scores[order[b]].CompletenessScore
	})
	for rank, idx := range order {
		scores[idx].Rank = rank + 1
	}

	return scores, nil
}

// Completeness computes the 0-100 completeness score for a single profile.
// Unknown boolean fields (nil) count as not completed.
func (e *Engine) Completeness(p model.BusinessProfile) float64 {
	var score float64
	for _, b := range []*bool{p.HasHours, p.HasDescription, p.HasMenuLink, p.HasPriceLevel} {
		if model.BoolField(b) {
			score += e.weights.PerBooleanField
		}
	}
	if model.CountPositive(p.RatingCount) {
		score += e.weights.ReviewBonus
	}
	if model.CountPositive(p.ImageCount) {
		score += e.weights.ImageBonus
	}
	if score > 1.0 {
		score = 1.0
	}
	return math.Round(score*100*100) / 100
}
