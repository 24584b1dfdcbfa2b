// Package catalog provides the UKM catalog: a keyword-searchable tabular
// store backed by SQLite, seeded from a spreadsheet CSV export.
package catalog

import (
	"context"

	"github.com/ukm-labs/advisor/internal/domain"
)

// Repository defines the interface for reading and seeding the club catalog.
type Repository interface {
	// List returns every club in insertion order.
	List(ctx context.Context) ([]domain.Club, error)

	// Count returns the number of clubs in the catalog.
	Count(ctx context.Context) (int, error)

	// ReplaceAll atomically replaces the catalog contents.
	ReplaceAll(ctx context.Context, clubs []domain.Club) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
