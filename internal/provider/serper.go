package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
	"github.com/bizlens/competitor-insights/internal/resilience"
	"github.com/bizlens/competitor-insights/pkg/serper"
)

// SerperDataProvider resolves identifiers through the Serper.dev places
// API. Transient upstream failures are retried here with backoff; what
// escapes is already classified for the orchestrator.
type SerperDataProvider struct {
	client   serper.Client
	location string
	retry    resilience.RetryConfig
}

// NewSerperDataProvider creates a live data provider. location biases
// search results (e.g. "Helsinki, Finland") and may be empty.
func NewSerperDataProvider(client serper.Client, location string, retry resilience.RetryConfig) *SerperDataProvider {
	return &SerperDataProvider{client: client, location: location, retry: retry}
}

// Name implements DataProvider.
func (s *SerperDataProvider) Name() string { return string(model.DataSourceSerper) }

// FetchProfile implements DataProvider. The identifier is used as the
// search query; for URL identifiers the bare domain searches better than
// the full URL. The top-ranked place wins.
func (s *SerperDataProvider) FetchProfile(ctx context.Context, identifier string) (*model.BusinessProfile, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, &errs.InvalidInputError{Field: "identifier", Message: "must not be empty"}
	}

	query := identifier
	if looksLikeURL(normalizeIdentifier(identifier)) {
		query = stripURLPrefix(normalizeIdentifier(identifier))
	}

	resp, err := s.search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(resp.Places) == 0 {
		return nil, &errs.NotFoundError{Identifier: identifier, Provider: s.Name()}
	}

	profile, err := s.toProfile(resp.Places[0], identifier)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("serper resolved business",
		zap.String("identifier", identifier),
		zap.String("name", profile.Name),
	)
	return profile, nil
}

// Search implements DataProvider.
func (s *SerperDataProvider) Search(ctx context.Context, query, location string, limit int) ([]model.BusinessProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	if location == "" {
		location = s.location
	}

	resp, err := s.searchAt(ctx, query, location, limit)
	if err != nil {
		return nil, err
	}

	results := make([]model.BusinessProfile, 0, len(resp.Places))
	for _, place := range resp.Places {
		profile, err := s.toProfile(place, query)
		if err != nil {
			zap.L().Warn("skipping invalid place from serper",
				zap.String("title", place.Title),
				zap.Error(err),
			)
			continue
		}
		results = append(results, *profile)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (s *SerperDataProvider) search(ctx context.Context, query string, limit int) (*serper.PlacesResponse, error) {
	return s.searchAt(ctx, query, s.location, limit)
}

func (s *SerperDataProvider) searchAt(ctx context.Context, query, location string, limit int) (*serper.PlacesResponse, error) {
	retry := s.retry
	retry.OnRetry = resilience.RetryLogger(s.Name(), "places_search")

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*serper.PlacesResponse, error) {
		return s.client.PlacesSearch(ctx, serper.PlacesRequest{
			Query:    query,
			Location: location,
			Num:      limit,
		})
	})
	if err != nil {
		if resilience.IsTransient(err) || ctx.Err() != nil {
			return nil, &errs.ProviderUnavailableError{Provider: s.Name(), Err: err}
		}
		return nil, eris.Wrap(err, "provider: serper search")
	}
	return resp, nil
}

func (s *SerperDataProvider) toProfile(p serper.Place, identifier string) (*model.BusinessProfile, error) {
	hasHours := p.OpeningHours != nil
	profile := &model.BusinessProfile{
		Name:           p.Title,
		Website:        p.Website,
		Address:        p.Address,
		Rating:         p.Rating,
		RatingCount:    p.RatingCount,
		Category:       p.Category,
		HasHours:       model.Bool(hasHours),
		HasDescription: model.Bool(p.Description != ""),
		HasMenuLink:    model.Bool(len(p.BookingLinks) > 0),
		HasPriceLevel:  model.Bool(p.PriceLevel != ""),
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		IdentifierUsed: identifier,
		Source:         model.DataSourceSerper,
	}
	if err := profile.Validate(); err != nil {
		return nil, eris.Wrap(err, "provider: map serper place")
	}
	return profile, nil
}
