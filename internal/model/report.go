package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportStyle selects the tone of the LLM analysis.
type ReportStyle string

const (
	StyleCasual     ReportStyle = "casual"
	StyleDataDriven ReportStyle = "data-driven"
)

// ValidStyle reports whether s is a supported report style.
func ValidStyle(s ReportStyle) bool {
	return s == StyleCasual || s == StyleDataDriven
}

// ProfileScore is the derived completeness score for one profile within a
// comparison set. Scores are on a 0-100 scale with two decimal places;
// ranks are 1-based and contiguous within the set.
type ProfileScore struct {
	CompletenessScore float64 `json:"completeness_score"`
	Rank              int     `json:"rank"`
}

// RankedProfile pairs a profile with its score as embedded in a report.
type RankedProfile struct {
	Profile BusinessProfile `json:"profile"`
	Score   ProfileScore    `json:"score"`
}

// AnalysisSummary is the structured form of the LLM comparison summary.
// When the model's output cannot be parsed as JSON, Raw carries the
// unmodified text and the structured fields stay empty.
type AnalysisSummary struct {
	Overview            string   `json:"overview,omitempty"`
	Strengths           []string `json:"strengths,omitempty"`
	Weaknesses          []string `json:"weaknesses,omitempty"`
	CompetitivePosition string   `json:"competitive_position,omitempty"`
	Raw                 string   `json:"raw,omitempty"`
}

// ReportMetadata records which LLM produced the analysis.
type ReportMetadata struct {
	LLMProvider string `json:"llm_provider,omitempty"`
	LLMModel    string `json:"llm_model,omitempty"`
	TokensUsed  int    `json:"tokens_used,omitempty"`
}

// ComparisonReport is the full result of one comparison request.
// Summary and Suggestions are always present: LLM failure degrades to an
// explicit fallback value, never to a missing field.
type ComparisonReport struct {
	ReportID             string          `json:"report_id"`
	UserBusiness         RankedProfile   `json:"user_business"`
	CompetitorBusinesses []RankedProfile `json:"competitor_businesses"`
	AIComparisonSummary  AnalysisSummary `json:"ai_comparison_summary"`
	AISuggestions        []string        `json:"ai_improvement_suggestions"`
	Metadata             ReportMetadata  `json:"metadata"`
	CreatedAt            time.Time       `json:"created_at"`
}

// NewReportID generates an opaque human-readable report identifier
// (comp_rpt_ plus 10 hex characters of a random UUID).
func NewReportID() string {
	u := uuid.New()
	return fmt.Sprintf("comp_rpt_%x", u[0:5])
}
