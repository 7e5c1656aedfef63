package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stf/internal/cloud"
	"stf/internal/config"
	"stf/internal/ui"
)

// FilterCommand handles the filter set, dismiss and show commands
type FilterCommand struct {
	config    *config.Config
	deps      *Deps
	formatter *ui.Formatter
	stdin     io.Reader
}

// NewFilterCommand creates a new FilterCommand
func NewFilterCommand(cfg *config.Config, deps *Deps, formatter *ui.Formatter) *FilterCommand {
	return &FilterCommand{
		config:    cfg,
		deps:      deps,
		formatter: formatter,
		stdin:     os.Stdin,
	}
}

// Set replaces the filter set of the configured run
func (fc *FilterCommand) Set(cmd *cobra.Command, args []string) error {
	ids := args
	if path := fc.config.Flags.FromPayload; path != "" {
		payloadIDs, err := fc.readPayload(path)
		if err != nil {
			return err
		}
		ids = append(ids, payloadIDs...)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no test ids given; pass ids or --from-payload")
	}

	store, err := fc.deps.Store(cmd.Context())
	if err != nil {
		return err
	}
	applied, err := store.Set(cmd.Context(), fc.config.RunID, ids)
	if err != nil {
		return err
	}
	if !applied {
		color.Yellow("No run id configured (--run-id or STF_RUN_ID); nothing stored")
		return nil
	}

	fs, err := store.Get(cmd.Context(), fc.config.RunID)
	if err != nil {
		return err
	}
	fc.formatter.PrintFilter(fc.config.RunID, fs)
	return nil
}

// Dismiss clears the filter set of the configured run
func (fc *FilterCommand) Dismiss(cmd *cobra.Command, args []string) error {
	store, err := fc.deps.Store(cmd.Context())
	if err != nil {
		return err
	}
	applied, err := store.Dismiss(cmd.Context(), fc.config.RunID)
	if err != nil {
		return err
	}
	if !applied {
		color.Yellow("No run id configured (--run-id or STF_RUN_ID); nothing dismissed")
		return nil
	}
	color.Green("✓ Filter set of run %s dismissed", fc.config.RunID)
	return nil
}

// Show prints the filter set of the configured run, or lists every run id
// with a stored set when no run is configured
func (fc *FilterCommand) Show(cmd *cobra.Command, args []string) error {
	store, err := fc.deps.Store(cmd.Context())
	if err != nil {
		return err
	}

	if fc.config.RunID != "" {
		fs, err := store.Get(cmd.Context(), fc.config.RunID)
		if err != nil {
			return err
		}
		fc.formatter.PrintFilter(fc.config.RunID, fs)
		return nil
	}

	runIDs, err := store.RunIDs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runIDs) == 0 {
		color.Yellow("No filter sets stored")
		return nil
	}
	for _, runID := range runIDs {
		fs, err := store.Get(cmd.Context(), runID)
		if err != nil {
			return err
		}
		fc.formatter.PrintFilter(runID, fs)
	}
	return nil
}

func (fc *FilterCommand) readPayload(path string) ([]string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(fc.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return cloud.ParsePayload(data)
}
