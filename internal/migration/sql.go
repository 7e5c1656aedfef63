package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"stf/internal/config"
	"stf/internal/storage"
)

// SQLMigrator creates the filter_sets schema and optionally imports the JSON
// filter store into it
type SQLMigrator struct {
	config          *config.Config
	databaseManager *DatabaseManager
	logger          *zap.Logger
	quiet           bool
}

// NewSQLMigrator creates a new SQLMigrator
func NewSQLMigrator(cfg *config.Config, dbManager *DatabaseManager, logger *zap.Logger) *SQLMigrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLMigrator{
		config:          cfg,
		databaseManager: dbManager,
		logger:          logger,
	}
}

// Run implements Migrator
func (m *SQLMigrator) Run(ctx context.Context, opts Options) error {
	res, err := m.Migrate(ctx, opts)
	if err != nil {
		return err
	}
	if res.Driver == "" {
		color.Yellow("Filter store driver %q keeps no schema, nothing to migrate", m.config.StoreDriver)
		return nil
	}
	color.Green("✓ %s filter store ready (imported: %d, removed: %d)", res.Driver, res.Imported, res.Removed)
	return nil
}

// Migrate does the work of Run and returns what it changed. A JSON store
// driver yields an empty Result.
func (m *SQLMigrator) Migrate(ctx context.Context, opts Options) (Result, error) {
	driver := m.config.StoreDriver
	switch driver {
	case storage.DriverMySQL, storage.DriverSQLite:
	default:
		return Result{}, nil
	}

	if !m.quiet {
		color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
		color.Cyan("║                  Migrating Filter Store                    ║")
		color.Cyan("╚════════════════════════════════════════════════════════════╝\n")
	}

	if driver == storage.DriverMySQL && m.config.StoreDSN == "" {
		if _, err := m.databaseManager.EnsureDatabase(ctx); err != nil {
			return Result{}, fmt.Errorf("failed to prepare database: %w", err)
		}
	}

	backend, err := storage.OpenSQL(ctx, driver, m.config.GetStoreDSN())
	if err != nil {
		return Result{}, fmt.Errorf("migration failed: %w", err)
	}
	defer backend.Close()

	res := Result{Driver: driver}
	if opts.Fresh {
		runIDs, err := backend.RunIDs(ctx)
		if err != nil {
			return res, err
		}
		for _, id := range runIDs {
			if err := backend.Delete(ctx, id); err != nil {
				return res, err
			}
			res.Removed++
		}
	}

	if opts.ImportJSON {
		n, err := m.importJSON(ctx, backend)
		res.Imported = n
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (m *SQLMigrator) importJSON(ctx context.Context, dst storage.Backend) (int, error) {
	path := m.config.GetStorePath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		m.logger.Info("no JSON filter store to import", zap.String("path", path))
		return 0, nil
	}

	src := storage.NewJSONBackend(path)
	runIDs, err := src.RunIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(runIDs) == 0 {
		return 0, nil
	}

	bar := m.newBar(len(runIDs))
	startTime := time.Now()
	imported := 0
	for _, runID := range runIDs {
		ids, found, err := src.Load(ctx, runID)
		if err != nil {
			return imported, err
		}
		if found {
			if err := dst.Save(ctx, runID, ids); err != nil {
				return imported, fmt.Errorf("failed to import run %s: %w", runID, err)
			}
			imported++
		}
		if bar != nil {
			_ = bar.Add(1)
			bar.Describe(color.CyanString("Importing: ") +
				color.GreenString("[completed: %d/%d]", imported, len(runIDs)))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	m.logger.Info("imported filter sets",
		zap.Int("runs", imported),
		zap.Duration("duration", time.Since(startTime).Round(time.Millisecond)))
	return imported, nil
}

func (m *SQLMigrator) newBar(total int) *progressbar.ProgressBar {
	if m.quiet {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(
			color.CyanString("Importing: ")+
				color.GreenString("[completed: 0/%d]", total),
		),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

var _ Migrator = (*SQLMigrator)(nil)
