package commands

import (
	"github.com/spf13/cobra"

	"stf/internal/config"
	"stf/internal/migration"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config *config.Config
	deps   *Deps
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config, deps *Deps) *MigrateCommand {
	return &MigrateCommand{
		config: cfg,
		deps:   deps,
	}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := mc.deps.Logger()
	migrator := migration.NewSQLMigrator(mc.config, migration.NewDatabaseManager(mc.config, logger), logger)
	return migrator.Run(cmd.Context(), migration.Options{
		ImportJSON: mc.config.Flags.ImportJSON,
		Fresh:      mc.config.Flags.Fresh,
	})
}
