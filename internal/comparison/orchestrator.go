// Package comparison coordinates the comparison pipeline: resolve the
// user's business, resolve or discover competitors, score the set, run
// the LLM analysis, and assemble the report.
package comparison

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
	"github.com/bizlens/competitor-insights/internal/provider"
	"github.com/bizlens/competitor-insights/internal/scoring"
)

// fallbackSummaryText is returned in place of the LLM analysis when the
// provider fails. Part of the API contract: reports always carry a
// summary.
const fallbackSummaryText = "Analysis unavailable"

// ReportStore persists finished reports. Persistence is best-effort; a
// save failure is logged and the report is still returned.
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.ComparisonReport) error
}

// Config tunes the orchestrator. Zero values fall back to defaults.
type Config struct {
	// CompetitorLimit caps how many competitors one comparison may carry,
	// whether supplied or discovered.
	CompetitorLimit int

	// FetchConcurrency bounds parallel competitor profile fetches.
	FetchConcurrency int

	// FetchTimeout applies per profile fetch.
	FetchTimeout time.Duration

	// AnalysisTimeout applies to the LLM call.
	AnalysisTimeout time.Duration
}

// DefaultConfig returns the standard orchestrator tuning.
func DefaultConfig() Config {
	return Config{
		CompetitorLimit:  5,
		FetchConcurrency: 4,
		FetchTimeout:     10 * time.Second,
		AnalysisTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CompetitorLimit <= 0 {
		c.CompetitorLimit = d.CompetitorLimit
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = d.FetchConcurrency
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.AnalysisTimeout <= 0 {
		c.AnalysisTimeout = d.AnalysisTimeout
	}
	return c
}

// Request describes one comparison to run.
type Request struct {
	UserIdentifier        string
	CompetitorIdentifiers []string
	Style                 model.ReportStyle
}

// Orchestrator runs comparisons end to end.
type Orchestrator struct {
	data    provider.DataProvider
	llm     provider.LLMProvider
	engine  *scoring.Engine
	reports ReportStore
	cfg     Config
	now     func() time.Time
}

// NewOrchestrator wires the pipeline. reports may be nil to disable
// persistence.
func NewOrchestrator(data provider.DataProvider, llm provider.LLMProvider, engine *scoring.Engine, reports ReportStore, cfg Config) *Orchestrator {
	return &Orchestrator{
		data:    data,
		llm:     llm,
		engine:  engine,
		reports: reports,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// CreateComparison resolves, scores, and analyzes one comparison set.
//
// Failure policy: an unresolvable user business aborts the whole request
// with BusinessNotFoundError before any scoring or analysis; a failed
// competitor fetch drops that competitor with a warning; an LLM failure
// degrades the report to a fallback summary. A comparison with zero
// surviving competitors is still valid.
func (o *Orchestrator) CreateComparison(ctx context.Context, req Request) (*model.ComparisonReport, error) {
	userIdentifier := strings.TrimSpace(req.UserIdentifier)
	if userIdentifier == "" {
		return nil, &errs.InvalidInputError{Field: "user_identifier", Message: "must not be empty"}
	}

	style := req.Style
	if style == "" {
		style = model.StyleCasual
	}
	if !model.ValidStyle(style) {
		return nil, &errs.InvalidInputError{Field: "style", Message: "must be one of: casual, data-driven"}
	}

	identifiers := make([]string, 0, len(req.CompetitorIdentifiers))
	for _, id := range req.CompetitorIdentifiers {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return nil, &errs.InvalidInputError{Field: "competitor_identifiers", Message: "entries must not be blank"}
		}
		identifiers = append(identifiers, trimmed)
	}
	if len(identifiers) > o.cfg.CompetitorLimit {
		zap.L().Warn("competitor list truncated",
			zap.Int("requested", len(identifiers)),
			zap.Int("limit", o.cfg.CompetitorLimit),
		)
		identifiers = identifiers[:o.cfg.CompetitorLimit]
	}

	userProfile, err := o.fetchProfile(ctx, userIdentifier)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, &errs.BusinessNotFoundError{Identifier: userIdentifier}
		}
		return nil, eris.Wrap(err, "comparison: fetch user business")
	}

	var competitors []model.BusinessProfile
	if len(identifiers) == 0 {
		competitors = o.discoverCompetitors(ctx, *userProfile)
	} else {
		competitors = o.fetchCompetitors(ctx, identifiers)
	}
	competitors = dropSelfAndDuplicates(*userProfile, competitors)
	if len(competitors) > o.cfg.CompetitorLimit {
		competitors = competitors[:o.cfg.CompetitorLimit]
	}

	profiles := append([]model.BusinessProfile{*userProfile}, competitors...)
	scores, err := o.engine.Score(profiles)
	if err != nil {
		return nil, eris.Wrap(err, "comparison: score profiles")
	}

	userScore := scores[0]
	ranked := make([]model.RankedProfile, len(competitors))
	for i, c := range competitors {
		ranked[i] = model.RankedProfile{Profile: c, Score: scores[i+1]}
	}

	summary, suggestions, metadata := o.analyze(ctx, provider.AnalysisInput{
		UserProfile: *userProfile,
		UserScore:   userScore,
		Competitors: ranked,
		Style:       style,
	})

	report := &model.ComparisonReport{
		ReportID:             model.NewReportID(),
		UserBusiness:         model.RankedProfile{Profile: *userProfile, Score: userScore},
		CompetitorBusinesses: ranked,
		AIComparisonSummary:  summary,
		AISuggestions:        suggestions,
		Metadata:             metadata,
		CreatedAt:            o.now().UTC(),
	}

	if o.reports != nil {
		if err := o.reports.SaveReport(ctx, report); err != nil {
			zap.L().Warn("failed to persist comparison report",
				zap.String("report_id", report.ReportID),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("comparison complete",
		zap.String("report_id", report.ReportID),
		zap.String("user_business", userProfile.Name),
		zap.Int("competitors", len(ranked)),
		zap.Float64("user_score", userScore.CompletenessScore),
		zap.Int("user_rank", userScore.Rank),
	)
	return report, nil
}

func (o *Orchestrator) fetchProfile(ctx context.Context, identifier string) (*model.BusinessProfile, error) {
	fctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()
	return o.data.FetchProfile(fctx, identifier)
}

// fetchCompetitors resolves competitor identifiers in parallel. Failures
// drop the competitor; surviving profiles keep the identifier order.
func (o *Orchestrator) fetchCompetitors(ctx context.Context, identifiers []string) []model.BusinessProfile {
	results := make([]*model.BusinessProfile, len(identifiers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.FetchConcurrency)
	for i, identifier := range identifiers {
		i, identifier := i, identifier
		g.Go(func() error {
			profile, err := o.fetchProfileWith(gctx, identifier)
			if err != nil {
				zap.L().Warn("dropping competitor",
					zap.String("identifier", identifier),
					zap.String("reason", errs.TypeOf(err)),
					zap.Error(err),
				)
				return nil
			}
			results[i] = profile
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	competitors := make([]model.BusinessProfile, 0, len(identifiers))
	for _, p := range results {
		if p != nil {
			competitors = append(competitors, *p)
		}
	}
	return competitors
}

func (o *Orchestrator) fetchProfileWith(ctx context.Context, identifier string) (*model.BusinessProfile, error) {
	fctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()
	return o.data.FetchProfile(fctx, identifier)
}

// discoverCompetitors finds a default competitor pool when the request
// names none, searching by the user's category. Discovery failure is not
// fatal; the comparison proceeds without competitors.
func (o *Orchestrator) discoverCompetitors(ctx context.Context, user model.BusinessProfile) []model.BusinessProfile {
	query := user.Category
	if query == "" {
		query = user.Name
	}

	sctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	// Fetch one extra so dropping the user's own entry still fills the set.
	found, err := o.data.Search(sctx, query, "", o.cfg.CompetitorLimit+1)
	if err != nil {
		zap.L().Warn("competitor discovery failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}
	return found
}

// dropSelfAndDuplicates removes the user's own business and repeated
// entries from the competitor set, preserving order.
func dropSelfAndDuplicates(user model.BusinessProfile, competitors []model.BusinessProfile) []model.BusinessProfile {
	seen := map[string]bool{businessKey(user.Name): true}
	if user.Website != "" {
		seen[businessKey(user.Website)] = true
	}

	kept := competitors[:0]
	for _, c := range competitors {
		key := businessKey(c.Name)
		siteKey := businessKey(c.Website)
		if seen[key] || (c.Website != "" && seen[siteKey]) {
			zap.L().Debug("dropping duplicate or self competitor", zap.String("name", c.Name))
			continue
		}
		seen[key] = true
		if c.Website != "" {
			seen[siteKey] = true
		}
		kept = append(kept, c)
	}
	return kept
}

func businessKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// analyze runs the LLM with a timeout and degrades on any failure.
func (o *Orchestrator) analyze(ctx context.Context, input provider.AnalysisInput) (model.AnalysisSummary, []string, model.ReportMetadata) {
	actx, cancel := context.WithTimeout(ctx, o.cfg.AnalysisTimeout)
	defer cancel()

	result, err := o.llm.Analyze(actx, input)
	if err != nil {
		zap.L().Warn("llm analysis failed, using fallback summary",
			zap.String("provider", o.llm.Name()),
			zap.String("reason", errs.TypeOf(err)),
			zap.Error(err),
		)
		return model.AnalysisSummary{Raw: fallbackSummaryText},
			[]string{},
			model.ReportMetadata{LLMProvider: o.llm.Name()}
	}

	return result.Summary, result.Suggestions, model.ReportMetadata{
		LLMProvider: result.Provider,
		LLMModel:    result.Model,
		TokensUsed:  result.TokensUsed,
	}
}
