package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
)

func fullProfile(name string) model.BusinessProfile {
	return model.BusinessProfile{
		Name:           name,
		HasHours:       model.Bool(true),
		HasDescription: model.Bool(true),
		HasMenuLink:    model.Bool(true),
		HasPriceLevel:  model.Bool(true),
		RatingCount:    model.Int(200),
		ImageCount:     model.Int(15),
	}
}

func TestCompleteness(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	tests := []struct {
		name    string
		profile model.BusinessProfile
		want    float64
	}{
		{
			name:    "everything present scores exactly 100",
			profile: fullProfile("Luigi's Pizza"),
			want:    100.00,
		},
		{
			name:    "nothing present scores exactly 0",
			profile: model.BusinessProfile{Name: "Ghost Town Grill", RatingCount: model.Int(0), ImageCount: model.Int(0)},
			want:    0.00,
		},
		{
			name:    "all fields unknown scores 0",
			profile: model.BusinessProfile{Name: "Mystery Diner"},
			want:    0.00,
		},
		{
			name: "two booleans plus both bonuses",
			profile: model.BusinessProfile{
				Name:           "Mario's Restaurant",
				HasHours:       model.Bool(true),
				HasDescription: model.Bool(true),
				HasMenuLink:    model.Bool(false),
				HasPriceLevel:  model.Bool(false),
				RatingCount:    model.Int(150),
				ImageCount:     model.Int(25),
			},
			want: 70.00,
		},
		{
			name: "explicit false and nil booleans score the same",
			profile: model.BusinessProfile{
				Name:        "Half Known Cafe",
				HasHours:    model.Bool(true),
				RatingCount: model.Int(12),
			},
			want: 35.00,
		},
		{
			name: "bonuses alone",
			profile: model.BusinessProfile{
				Name:        "Photogenic But Empty",
				RatingCount: model.Int(1),
				ImageCount:  model.Int(1),
			},
			want: 20.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, engine.Completeness(tt.profile), 0.001)
		})
	}
}

func TestScoreRejectsEmptyInput(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	_, err := engine.Score(nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestScoreRanksDescending(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	user := model.BusinessProfile{
		Name:           "Mario's Restaurant",
		HasHours:       model.Bool(true),
		HasDescription: model.Bool(true),
		RatingCount:    model.Int(150),
		ImageCount:     model.Int(25),
	}
	competitor := fullProfile("Luigi's Pizza")

	scores, err := engine.Score([]model.BusinessProfile{user, competitor})
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.Equal(t, 70.00, scores[0].CompletenessScore)
	assert.Equal(t, 2, scores[0].Rank)
	assert.Equal(t, 100.00, scores[1].CompletenessScore)
	assert.Equal(t, 1, scores[1].Rank)
}

func TestScoreTieBreakPreservesInputOrder(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	// Three identical profiles: ranks must follow input order.
	profiles := []model.BusinessProfile{
		fullProfile("First"),
		fullProfile("Second"),
		fullProfile("Third"),
	}

	scores, err := engine.Score(profiles)
	require.NoError(t, err)
	assert.Equal(t, 1, scores[0].Rank)
	assert.Equal(t, 2, scores[1].Rank)
	assert.Equal(t, 3, scores[2].Rank)
}

func TestScoreRanksAreContiguousPermutation(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	profiles := []model.BusinessProfile{
		{Name: "A", HasHours: model.Bool(true)},
		fullProfile("B"),
		{Name: "C"},
		{Name: "D", HasHours: model.Bool(true), HasDescription: model.Bool(true)},
		{Name: "E", ImageCount: model.Int(3)},
	}

	scores, err := engine.Score(profiles)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.CompletenessScore, 0.0)
		assert.LessOrEqual(t, s.CompletenessScore, 100.0)
		assert.False(t, seen[s.Rank], "duplicate rank %d", s.Rank)
		seen[s.Rank] = true
	}
	for rank := 1; rank <= len(profiles); rank++ {
		assert.True(t, seen[rank], "missing rank %d", rank)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	profiles := []model.BusinessProfile{
		{Name: "A", HasHours: model.Bool(true), RatingCount: model.Int(10)},
		fullProfile("B"),
		{Name: "C", HasMenuLink: model.Bool(true)},
	}

	first, err := engine.Score(profiles)
	require.NoError(t, err)
	second, err := engine.Score(profiles)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreSingleton(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	scores, err := engine.Score([]model.BusinessProfile{{Name: "Lonely Diner"}})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 1, scores[0].Rank)
}

func TestNewEngineDefaultsZeroWeights(t *testing.T) {
	engine := NewEngine(Weights{})
	assert.Equal(t, 100.00, engine.Completeness(fullProfile("Defaulted")))
}
