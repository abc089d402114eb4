// Package provider defines the pluggable data and LLM capability
// boundaries of the comparison pipeline, with mock and live
// implementations selected by configuration at process start.
package provider

import (
	"context"

	"github.com/bizlens/competitor-insights/internal/model"
)

// DataProvider resolves business identifiers to profiles. An identifier
// is a non-empty business name or URL; resolution strategy (exact vs
// fuzzy name match, domain match) is provider-specific.
type DataProvider interface {
	// FetchProfile resolves one identifier. Returns errs.NotFoundError
	// when the identifier cannot be resolved and
	// errs.ProviderUnavailableError when the upstream source is
	// unreachable after retries.
	FetchProfile(ctx context.Context, identifier string) (*model.BusinessProfile, error)

	// Search returns candidate profiles for a free-text query. A
	// superset capability of FetchProfile, backing the business search
	// endpoint and default competitor discovery.
	Search(ctx context.Context, query, location string, limit int) ([]model.BusinessProfile, error)

	// Name identifies the provider in logs and profile data_source tags.
	Name() string
}

// AnalysisInput is the assembled context handed to an LLM provider.
type AnalysisInput struct {
	UserProfile model.BusinessProfile `json:"user_profile"`
	UserScore   model.ProfileScore    `json:"user_score"`
	Competitors []model.RankedProfile `json:"competitors"`
	Style       model.ReportStyle     `json:"style"`
}

// AnalysisResult is the LLM provider's output. Summary is always
// populated: structured fields when the model returned parseable JSON,
// raw text otherwise.
type AnalysisResult struct {
	Summary     model.AnalysisSummary `json:"summary"`
	Suggestions []string              `json:"suggestions"`
	TokensUsed  int                   `json:"tokens_used"`
	Model       string                `json:"model"`
	Provider    string                `json:"provider"`
}

// LLMProvider turns profiles and scores into a narrative analysis.
type LLMProvider interface {
	// Analyze generates the comparison summary and suggestions. Returns
	// errs.LLMUnavailableError on upstream failure after retries and
	// errs.LLMQuotaExceededError on rate/budget exhaustion. Unparsable
	// model output is never an error; it degrades to a raw-text summary.
	Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error)

	// Name identifies the provider in logs and report metadata.
	Name() string
}
