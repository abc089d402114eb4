package model

import (
	"github.com/rotisserie/eris"
)

// DataSource identifies which provider produced a profile.
type DataSource string

const (
	DataSourceMock   DataSource = "mock"
	DataSourceSerper DataSource = "serper"
)

// BusinessProfile is a normalized snapshot of one business's online
// presence. Profiles are built fresh per comparison request and never
// mutated after Validate passes.
//
// Pointer fields distinguish "unknown" (nil) from a known zero value.
type BusinessProfile struct {
	Name           string     `json:"name"`
	Website        string     `json:"website,omitempty"`
	Address        string     `json:"address,omitempty"`
	Rating         *float64   `json:"rating,omitempty"`
	RatingCount    *int       `json:"rating_count,omitempty"`
	ImageCount     *int       `json:"image_count,omitempty"`
	Category       string     `json:"category,omitempty"`
	HasHours       *bool      `json:"has_hours,omitempty"`
	HasDescription *bool      `json:"has_description,omitempty"`
	HasMenuLink    *bool      `json:"has_menu_link,omitempty"`
	HasPriceLevel  *bool      `json:"has_price_level,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	IdentifierUsed string     `json:"identifier_used"`
	Source         DataSource `json:"data_source"`
}

// Validate checks profile invariants: rating in [0,5], counts non-negative.
func (p *BusinessProfile) Validate() error {
	if p.Name == "" {
		return eris.New("model: profile name is required")
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return eris.Errorf("model: rating %.2f outside [0,5] for %q", *p.Rating, p.Name)
	}
	if p.RatingCount != nil && *p.RatingCount < 0 {
		return eris.Errorf("model: negative rating_count %d for %q", *p.RatingCount, p.Name)
	}
	if p.ImageCount != nil && *p.ImageCount < 0 {
		return eris.Errorf("model: negative image_count %d for %q", *p.ImageCount, p.Name)
	}
	return nil
}

// BoolField reports a nullable boolean as a plain bool, treating unknown
// (nil) as false. Scoring relies on this: unknown never errors, it just
// doesn't count.
func BoolField(b *bool) bool {
	return b != nil && *b
}

// CountPositive reports whether a nullable count is present and positive.
func CountPositive(n *int) bool {
	return n != nil && *n > 0
}

// Float64 returns a pointer to v. Convenience for profile literals.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
