package provider

import (
	"context"
	_ "embed"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
)

//go:embed mockdata.yaml
var mockDataset []byte

// mockPlace is one entry in the embedded fixture dataset.
type mockPlace struct {
	Title          string   `yaml:"title"`
	Address        string   `yaml:"address"`
	Website        string   `yaml:"website"`
	Rating         float64  `yaml:"rating"`
	RatingCount    int      `yaml:"rating_count"`
	ImageCount     int      `yaml:"image_count"`
	Category       string   `yaml:"category"`
	Description    string   `yaml:"description"`
	HasHours       bool     `yaml:"has_hours"`
	HasDescription bool     `yaml:"has_description"`
	HasMenuLink    bool     `yaml:"has_menu_link"`
	HasPriceLevel  bool     `yaml:"has_price_level"`
	Latitude       *float64 `yaml:"latitude"`
	Longitude      *float64 `yaml:"longitude"`
}

type mockFile struct {
	Places []mockPlace `yaml:"places"`
}

// MockDataProvider serves profiles from the embedded fixture dataset.
// Resolution is deterministic: URL identifiers match by website
// substring, names match exactly first and then by substring, both after
// case folding and diacritic stripping. Identifiers with no dataset
// match produce a hash-derived fallback profile unless strict mode is
// enabled, in which case they fail with NotFoundError.
type MockDataProvider struct {
	places []mockPlace
	strict bool
}

// NewMockDataProvider loads the embedded dataset.
func NewMockDataProvider(strict bool) (*MockDataProvider, error) {
	var f mockFile
	if err := yaml.Unmarshal(mockDataset, &f); err != nil {
		return nil, eris.Wrap(err, "provider: parse mock dataset")
	}
	if len(f.Places) == 0 {
		return nil, eris.New("provider: mock dataset is empty")
	}
	return &MockDataProvider{places: f.Places, strict: strict}, nil
}

// Name implements DataProvider.
func (m *MockDataProvider) Name() string { return string(model.DataSourceMock) }

// FetchProfile implements DataProvider.
func (m *MockDataProvider) FetchProfile(_ context.Context, identifier string) (*model.BusinessProfile, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, &errs.InvalidInputError{Field: "identifier", Message: "must not be empty"}
	}

	normalized := normalizeIdentifier(identifier)
	isURL := looksLikeURL(normalized)

	if isURL {
		needle := stripURLPrefix(normalized)
		for _, p := range m.places {
			site := stripURLPrefix(normalizeIdentifier(p.Website))
			if site != "" && (strings.Contains(site, needle) || strings.Contains(needle, site)) {
				return m.toProfile(p, identifier)
			}
		}
	} else {
		for _, p := range m.places {
			if normalizeIdentifier(p.Title) == normalized {
				return m.toProfile(p, identifier)
			}
		}
		for _, p := range m.places {
			if strings.Contains(normalizeIdentifier(p.Title), normalized) {
				return m.toProfile(p, identifier)
			}
		}
	}

	if m.strict {
		return nil, &errs.NotFoundError{Identifier: identifier, Provider: m.Name()}
	}

	zap.L().Warn("business not in mock dataset, returning fallback profile",
		zap.String("identifier", identifier),
	)
	return m.fallbackProfile(identifier, isURL)
}

// Search implements DataProvider. An empty query returns the whole
// dataset; otherwise title, description, and category are matched by
// substring.
func (m *MockDataProvider) Search(_ context.Context, query, _ string, limit int) ([]model.BusinessProfile, error) {
	if limit <= 0 {
		limit = len(m.places)
	}

	normalized := normalizeIdentifier(query)
	var results []model.BusinessProfile
	for _, p := range m.places {
		if normalized != "" &&
			!strings.Contains(normalizeIdentifier(p.Title), normalized) &&
			!strings.Contains(normalizeIdentifier(p.Description), normalized) &&
			!strings.Contains(normalizeIdentifier(p.Category), normalized) {
			continue
		}
		profile, err := m.toProfile(p, p.Title)
		if err != nil {
			return nil, err
		}
		results = append(results, *profile)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *MockDataProvider) toProfile(p mockPlace, identifier string) (*model.BusinessProfile, error) {
	profile := &model.BusinessProfile{
		Name:           p.Title,
		Website:        p.Website,
		Address:        p.Address,
		Rating:         model.Float64(p.Rating),
		RatingCount:    model.Int(p.RatingCount),
		ImageCount:     model.Int(p.ImageCount),
		Category:       p.Category,
		HasHours:       model.Bool(p.HasHours),
		HasDescription: model.Bool(p.HasDescription),
		HasMenuLink:    model.Bool(p.HasMenuLink),
		HasPriceLevel:  model.Bool(p.HasPriceLevel),
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		IdentifierUsed: identifier,
		Source:         model.DataSourceMock,
	}
	if err := profile.Validate(); err != nil {
		return nil, eris.Wrapf(err, "provider: mock dataset entry %q", p.Title)
	}
	return profile, nil
}

// fallbackProfile fabricates a profile for an unknown identifier. Values
// are derived from an FNV-1a hash of the normalized identifier so the
// same input always yields the same profile.
func (m *MockDataProvider) fallbackProfile(identifier string, isURL bool) (*model.BusinessProfile, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(normalizeIdentifier(identifier)))
	seed := h.Sum64()

	pick := func(span uint64) int {
		v := int(seed % span)
		seed /= span
		return v
	}

	categories := []string{"Restaurant", "Bar", "Cafe"}
	rating := math.Round((3.5+float64(pick(14))*0.1)*10) / 10 // 3.5 .. 4.8

	name := identifier
	website := fmt.Sprintf("https://%s.example", strings.ReplaceAll(normalizeIdentifier(identifier), " ", "-"))
	address := fmt.Sprintf("%s, Helsinki", identifier)
	if isURL {
		name = "Your Business"
		website = identifier
		address = "Helsinki"
	}

	profile := &model.BusinessProfile{
		Name:           name,
		Website:        website,
		Address:        address,
		Rating:         model.Float64(rating),
		RatingCount:    model.Int(10 + pick(991)),
		ImageCount:     model.Int(1 + pick(100)),
		Category:       categories[pick(3)],
		HasHours:       model.Bool(pick(2) == 1),
		HasDescription: model.Bool(pick(2) == 1),
		HasMenuLink:    model.Bool(pick(2) == 1),
		HasPriceLevel:  model.Bool(pick(2) == 1),
		IdentifierUsed: identifier,
		Source:         model.DataSourceMock,
	}
	if err := profile.Validate(); err != nil {
		return nil, eris.Wrap(err, "provider: fallback profile")
	}
	return profile, nil
}
