package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"stf/internal/aggregate"
	"stf/internal/cloud"
	"stf/internal/config"
	"stf/internal/discovery"
	"stf/internal/domain"
	"stf/internal/engine"
	"stf/internal/parser"
	"stf/internal/session"
)

// Runner evaluates a single spec: it builds the tree, attaches the run
// context and replays the recorded outcome stream through a session.
type Runner struct {
	config  *config.Config
	specs   *discovery.Parser
	stream  *parser.StreamParser
	store   *cloud.Store
	engine  *engine.Engine
	logger  *zap.Logger
	nowFunc func() time.Time
}

// NewRunner creates a new Runner. Every session it opens shares store.
func NewRunner(cfg *config.Config, specs *discovery.Parser, stream *parser.StreamParser, store *cloud.Store, eng *engine.Engine, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		config:  cfg,
		specs:   specs,
		stream:  stream,
		store:   store,
		engine:  eng,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Open loads the spec at specPath into a new session without replaying any
// outcomes.
func (r *Runner) Open(ctx context.Context, specPath string) (*session.Session, error) {
	t, err := r.specs.ParseFile(specPath)
	if err != nil {
		return nil, err
	}

	s := session.New(r.store, r.engine, r.logger.With(zap.String("spec", discovery.SpecName(specPath))))
	if _, err := s.Apply(ctx, session.SpecLoaded{Tree: t, RunID: r.config.RunID, Browser: r.config.Browser}); err != nil {
		return nil, fmt.Errorf("load %s: %w", specPath, err)
	}
	return s, nil
}

// Replay opens specPath and applies its outcome stream. A spec without a
// results file is left with every included test pending.
func (r *Runner) Replay(ctx context.Context, specPath string) (*session.Session, error) {
	s, err := r.Open(ctx, specPath)
	if err != nil {
		return nil, err
	}

	resultsPath := r.config.GetResultsFile(discovery.SpecName(specPath))
	records, err := r.stream.ParseFile(resultsPath)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("no outcome stream", zap.String("path", resultsPath))
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.apply(ctx, s, specPath, rec); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", resultsPath, rec.Line, err)
		}
	}
	return s, nil
}

func (r *Runner) apply(ctx context.Context, s *session.Session, specPath string, rec parser.Record) error {
	switch rec.Kind {
	case parser.RecordReinit:
		// a reloaded page rebuilds its tree from scratch
		t, err := r.specs.ParseFile(specPath)
		if err != nil {
			return err
		}
		_, err = s.Apply(ctx, session.PageReinitialized{Tree: t})
		return err
	default:
		_, err := s.Apply(ctx, session.OutcomeRecorded{ID: rec.ID, Outcome: rec.Outcome})
		return err
	}
}

// Run replays specPath and returns its report
func (r *Runner) Run(ctx context.Context, specPath string) (domain.Report, error) {
	s, err := r.Replay(ctx, specPath)
	if err != nil {
		return domain.Report{}, err
	}
	return r.Report(s), nil
}

// Report builds the persisted view of a session
func (r *Runner) Report(s *session.Session) domain.Report {
	view := s.View()
	return domain.Report{
		Meta: domain.ReportMeta{
			Spec:      view.Annotated.Tree.Title(),
			RunID:     view.Context.RunID,
			Browser:   view.Context.Browser,
			Policy:    r.engine.Policy().String(),
			Filter:    view.Context.Filter.IDs(),
			Summary:   view.Summary,
			Badge:     view.Summary.Badge(),
			Timestamp: r.nowFunc().Format(time.RFC3339),
		},
		Tests: aggregate.Entries(view.Annotated, s.Outcomes()),
	}
}
