package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stf/internal/config"
	"stf/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	deps      *Deps
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, deps *Deps, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		deps:      deps,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	specs, err := lc.deps.DiscoverSpecs(args)
	if err != nil {
		return err
	}

	if len(specs) == 0 {
		color.Yellow("No specs found")
		return nil
	}

	return lc.formatter.PrintSpecList(specs, lc.config.Flags.ShowTests)
}
