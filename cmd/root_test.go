package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizlens/competitor-insights/internal/model"
)

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "compare", "reports", "search"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func testReport() *model.ComparisonReport {
	return &model.ComparisonReport{
		ReportID: "comp_rpt_0123456789",
		UserBusiness: model.RankedProfile{
			Profile: model.BusinessProfile{Name: "Mario's Restaurant"},
			Score:   model.ProfileScore{CompletenessScore: 70.00, Rank: 2},
		},
		CompetitorBusinesses: []model.RankedProfile{
			{
				Profile: model.BusinessProfile{Name: "Luigi's Pizza"},
				Score:   model.ProfileScore{CompletenessScore: 100.00, Rank: 1},
			},
		},
		AIComparisonSummary: model.AnalysisSummary{
			Overview:            "Close race in the neighborhood",
			CompetitivePosition: "Second of two",
		},
		AISuggestions: []string{"Add a menu link"},
		CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormatReportText(t *testing.T) {
	out, err := formatReport(testReport(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "comp_rpt_0123456789")
	assert.Contains(t, out, "Mario's Restaurant")
	assert.Contains(t, out, "(you)")
	assert.Contains(t, out, "70.00")
	assert.Contains(t, out, "Luigi's Pizza")
	assert.Contains(t, out, "Close race in the neighborhood")
	assert.Contains(t, out, "- Add a menu link")
}

func TestFormatReportTextRawSummary(t *testing.T) {
	report := testReport()
	report.AIComparisonSummary = model.AnalysisSummary{Raw: "Analysis unavailable"}

	out, err := formatReport(report, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis unavailable")
	assert.NotContains(t, out, "Position:")
}

func TestFormatReportJSON(t *testing.T) {
	out, err := formatReport(testReport(), "json")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	assert.Contains(t, out, `"report_id": "comp_rpt_0123456789"`)
	assert.Contains(t, out, `"ai_improvement_suggestions"`)
}

func TestFormatReportUnknownFormat(t *testing.T) {
	_, err := formatReport(testReport(), "yaml")
	assert.Error(t, err)
}
