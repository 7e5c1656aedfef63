package commands

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"stf/internal/cloud"
	"stf/internal/config"
	"stf/internal/discovery"
	"stf/internal/engine"
	"stf/internal/execution"
	"stf/internal/parser"
	"stf/internal/storage"
)

// Deps are the services shared by commands. Services that depend on parsed
// flags or on an open store are built on first use.
type Deps struct {
	config  *config.Config
	logger  *zap.Logger
	Scanner *discovery.Scanner
	Filter  *discovery.Filter
	Specs   *discovery.Parser
	Stream  *parser.StreamParser

	mu      sync.Mutex
	backend storage.Backend
	store   *cloud.Store
}

// NewDeps creates the flag-independent services
func NewDeps(cfg *config.Config) *Deps {
	return &Deps{
		config:  cfg,
		logger:  zap.NewNop(),
		Scanner: discovery.NewScanner(cfg.PathsToIgnore),
		Filter:  discovery.NewFilter(),
		Specs:   discovery.NewParser(),
		Stream:  parser.NewStreamParser(),
	}
}

// SetLogger replaces the logger handed to services built afterwards
func (d *Deps) SetLogger(logger *zap.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Logger returns the command logger
func (d *Deps) Logger() *zap.Logger {
	return d.logger
}

// Store opens the configured filter store backend once
func (d *Deps) Store(ctx context.Context) (*cloud.Store, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.store != nil {
		return d.store, nil
	}
	backend, err := storage.Open(ctx, d.config.StoreDriver, d.config.GetStoreDSN(), d.config.GetStorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open filter store: %w", err)
	}
	d.backend = backend
	d.store = cloud.NewStore(backend, d.logger)
	return d.store, nil
}

// Engine builds the engine for the configured policy
func (d *Deps) Engine() (*engine.Engine, error) {
	policy, err := engine.ParsePolicy(d.config.Policy)
	if err != nil {
		return nil, err
	}
	return engine.New(policy, d.logger), nil
}

// Runner builds a spec runner sharing the filter store
func (d *Deps) Runner(ctx context.Context) (*execution.Runner, error) {
	store, err := d.Store(ctx)
	if err != nil {
		return nil, err
	}
	eng, err := d.Engine()
	if err != nil {
		return nil, err
	}
	return execution.NewRunner(d.config, d.Specs, d.Stream, store, eng, d.logger), nil
}

// DiscoverSpecs scans the spec path (or args[0]) and applies the name filter
func (d *Deps) DiscoverSpecs(args []string) ([]string, error) {
	root := d.config.GetSpecPath()
	if len(args) > 0 {
		root = args[0]
	}
	specs, err := d.Scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	return d.Filter.FilterByName(specs, d.config.Flags.NameFilter), nil
}

// Close releases the store backend
func (d *Deps) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.backend == nil {
		return nil
	}
	err := d.backend.Close()
	d.backend, d.store = nil, nil
	return err
}
