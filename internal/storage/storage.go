// Package storage persists filter sets keyed by run id and the reports
// produced for each spec.
package storage

import (
	"context"
	"errors"
	"fmt"

	"stf/internal/domain"
)

// ErrUnknownDriver is returned for a backend driver name that is not supported
var ErrUnknownDriver = errors.New("unknown storage driver")

// Backend persists the filter set of each run id. Sets outlive the process
// that wrote them, which is what lets a reinitialized page reattach.
type Backend interface {
	// Load returns the stored ids for runID; found is false when nothing was recorded.
	Load(ctx context.Context, runID string) (ids []string, found bool, err error)
	// Save replaces the stored ids for runID.
	Save(ctx context.Context, runID string, ids []string) error
	// Delete removes whatever is stored for runID.
	Delete(ctx context.Context, runID string) error
	// RunIDs lists every run id that currently has a stored set.
	RunIDs(ctx context.Context) ([]string, error)
	Close() error
}

// ReportWriter persists reporter output
type ReportWriter interface {
	SaveReports(reports []domain.Report) error
	LoadReports() ([]domain.Report, error)
}

// Open returns the Backend for driver. "json" (or empty) uses path; the SQL
// drivers use dsn.
func Open(ctx context.Context, driver, dsn, path string) (Backend, error) {
	switch driver {
	case "", "json":
		return NewJSONBackend(path), nil
	case DriverMySQL, DriverSQLite:
		return OpenSQL(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
