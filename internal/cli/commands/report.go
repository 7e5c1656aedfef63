package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stf/internal/config"
	"stf/internal/execution"
	"stf/internal/storage"
	"stf/internal/ui"
)

// ReportCommand handles the report command
type ReportCommand struct {
	config    *config.Config
	deps      *Deps
	formatter *ui.Formatter
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(cfg *config.Config, deps *Deps, formatter *ui.Formatter) *ReportCommand {
	return &ReportCommand{
		config:    cfg,
		deps:      deps,
		formatter: formatter,
	}
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	specs, err := rc.deps.DiscoverSpecs(args)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		color.Yellow("No specs to evaluate")
		return nil
	}

	runner, err := rc.deps.Runner(ctx)
	if err != nil {
		return err
	}

	pool := execution.NewWorkerPool(rc.config.Processors, runner, execution.NewRoundRobinScheduler())
	pool.SetProgress(ui.NewProgressBar(len(specs)))

	reports, duration, runErr := pool.Execute(ctx, specs)
	if runErr != nil {
		rc.deps.Logger().Error("spec evaluation failed", zap.Error(runErr))
	}

	// Save reports
	writer := storage.NewJSONReports(rc.config.GetOutputPath())
	if err := writer.SaveReports(reports); err != nil {
		return fmt.Errorf("failed to save reports: %w", err)
	}

	if rc.config.Flags.Tree {
		for _, spec := range specs {
			s, err := runner.Replay(ctx, spec)
			if err != nil {
				continue
			}
			view := s.View()
			fmt.Println()
			rc.formatter.PrintAnnotated(view.Annotated, s.Outcomes(), view.Summary, rc.config.Flags.ShowHidden)
		}
	}

	rc.formatter.PrintReports(reports, duration, rc.config.Processors)
	color.White("Report written to %s", rc.config.GetOutputPath())

	if runErr != nil {
		return fmt.Errorf("%d of %d spec(s) could not be evaluated: %w", len(specs)-len(reports), len(specs), runErr)
	}
	return nil
}
