package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stf/internal/cloud"
	"stf/internal/config"
	"stf/internal/discovery"
	"stf/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	config *config.Config
	deps   *Deps
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(cfg *config.Config, deps *Deps) *ViewCommand {
	return &ViewCommand{
		config: cfg,
		deps:   deps,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec, err := vc.pickSpec(args)
	if err != nil {
		return err
	}
	if spec == "" {
		color.Yellow("No specs found")
		return nil
	}

	runner, err := vc.deps.Runner(ctx)
	if err != nil {
		return err
	}
	s, err := runner.Replay(ctx, spec)
	if err != nil {
		return err
	}

	// only the JSON store lives in a file other processes can be watched through
	changes := make(chan struct{}, 1)
	if vc.config.UsesJSONStore() {
		watcher, err := cloud.NewWatcher(vc.config.GetStorePath(), func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		}, vc.deps.Logger())
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			watcher.Stop()
			return err
		}
		defer watcher.Stop()
	}

	// the panel owns the terminal, so logs below error level are dropped
	panel := ui.NewReporterPanel(vc.config.Flags.ShowHidden, vc.deps.Logger().WithOptions(zap.IncreaseLevel(zap.ErrorLevel)))
	return panel.View(ctx, s, changes)
}

func (vc *ViewCommand) pickSpec(args []string) (string, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			if !discovery.IsSpecFile(args[0]) {
				return "", fmt.Errorf("not a spec fixture: %s", args[0])
			}
			return args[0], nil
		}
	}
	specs, err := vc.deps.DiscoverSpecs(args)
	if err != nil {
		return "", err
	}
	if len(specs) == 0 {
		return "", nil
	}
	if len(specs) > 1 {
		vc.deps.Logger().Info("several specs match, opening the first", zap.Int("matches", len(specs)), zap.String("spec", specs[0]))
	}
	return specs[0], nil
}
