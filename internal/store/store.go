// Package store persists comparison reports. Two backends implement the
// same interface: SQLite for local single-binary deployments and
// PostgreSQL for shared ones.
package store

import (
	"context"

	"github.com/bizlens/competitor-insights/internal/model"
)

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	// UserBusiness filters by the exact name of the compared business.
	UserBusiness string `json:"user_business,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for comparison reports.
// GetReport returns errs.NotFoundError for unknown report IDs.
type Store interface {
	SaveReport(ctx context.Context, report *model.ComparisonReport) error
	GetReport(ctx context.Context, reportID string) (*model.ComparisonReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.ComparisonReport, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
