package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func reportFixture(userName string, createdAt time.Time) *model.ComparisonReport {
	return &model.ComparisonReport{
		ReportID: model.NewReportID(),
		UserBusiness: model.RankedProfile{
			Profile: model.BusinessProfile{Name: userName, Source: model.DataSourceMock},
			Score:   model.ProfileScore{CompletenessScore: 70.00, Rank: 2},
		},
		CompetitorBusinesses: []model.RankedProfile{
			{
				Profile: model.BusinessProfile{Name: "Luigi's Pizza", Source: model.DataSourceMock},
				Score:   model.ProfileScore{CompletenessScore: 100.00, Rank: 1},
			},
		},
		AIComparisonSummary: model.AnalysisSummary{Overview: "close race"},
		AISuggestions:       []string{"add a menu link"},
		Metadata:            model.ReportMetadata{LLMProvider: "mock", LLMModel: "canned-v1"},
		CreatedAt:           createdAt,
	}
}

func TestSQLite_SaveAndGetReport(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	report := reportFixture("Mario's Restaurant", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, st.SaveReport(ctx, report))

	got, err := st.GetReport(ctx, report.ReportID)
	require.NoError(t, err)
	assert.Equal(t, report.ReportID, got.ReportID)
	assert.Equal(t, "Mario's Restaurant", got.UserBusiness.Profile.Name)
	assert.Equal(t, 70.00, got.UserBusiness.Score.CompletenessScore)
	require.Len(t, got.CompetitorBusinesses, 1)
	assert.Equal(t, "close race", got.AIComparisonSummary.Overview)
	assert.Equal(t, []string{"add a menu link"}, got.AISuggestions)
}

func TestSQLite_GetReport_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetReport(context.Background(), "comp_rpt_0000000000")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestSQLite_SaveReport_DuplicateID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	report := reportFixture("Mario's Restaurant", time.Now().UTC())
	require.NoError(t, st.SaveReport(ctx, report))
	assert.Error(t, st.SaveReport(ctx, report))
}

func TestSQLite_ListReports(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := reportFixture("Mario's Restaurant", base)
	second := reportFixture("Mario's Restaurant", base.Add(time.Hour))
	other := reportFixture("Green Bowl", base.Add(2*time.Hour))
	for _, r := range []*model.ComparisonReport{first, second, other} {
		require.NoError(t, st.SaveReport(ctx, r))
	}

	t.Run("newest first", func(t *testing.T) {
		reports, err := st.ListReports(ctx, ReportFilter{})
		require.NoError(t, err)
		require.Len(t, reports, 3)
		assert.Equal(t, other.ReportID, reports[0].ReportID)
		assert.Equal(t, first.ReportID, reports[2].ReportID)
	})

	t.Run("filter by user business", func(t *testing.T) {
		reports, err := st.ListReports(ctx, ReportFilter{UserBusiness: "Mario's Restaurant"})
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, second.ReportID, reports[0].ReportID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		reports, err := st.ListReports(ctx, ReportFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, second.ReportID, reports[0].ReportID)
	})

	t.Run("no match", func(t *testing.T) {
		reports, err := st.ListReports(ctx, ReportFilter{UserBusiness: "Nobody"})
		require.NoError(t, err)
		assert.Empty(t, reports)
	})
}
