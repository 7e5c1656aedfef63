package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stf/internal/cli"
	"stf/internal/config"
	"stf/internal/logging"
	"stf/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	deps    *Deps
	Report  *ReportCommand
	List    *ListCommand
	View    *ViewCommand
	Filter  *FilterCommand
	Migrate *MigrateCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	deps := NewDeps(cfg)
	formatter := ui.NewFormatter(cfg, deps.Specs)

	return &Commands{
		deps:    deps,
		Report:  NewReportCommand(cfg, deps, formatter),
		List:    NewListCommand(cfg, deps, formatter),
		View:    NewViewCommand(cfg, deps),
		Filter:  NewFilterCommand(cfg, deps, formatter),
		Migrate: NewMigrateCommand(cfg, deps),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(flags.Verbose)
		if err != nil {
			return err
		}
		c.deps.SetLogger(logger)

		// Update config with flags after parsing
		if err := cfg.Apply(flags.ToConfigFlags()); err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("command", cmd.Name()),
			zap.String("project", cfg.ProjectPath),
			zap.String("store_driver", cfg.StoreDriver),
			zap.String("run_id", cfg.RunID),
			zap.String("browser", cfg.Browser),
			zap.String("policy", cfg.Policy))
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if err := c.deps.Close(); err != nil {
			c.deps.Logger().Warn("close filter store", zap.Error(err))
		}
		_ = c.deps.Logger().Sync()
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&flags.ProjectPath, "project", "", "Project directory holding .env, specs, results and storage")
	pf.StringVarP(&flags.RunID, "run-id", "r", "", "Cloud run id the filter set belongs to (env STF_RUN_ID)")
	pf.StringVarP(&flags.Browser, "browser", "b", "", "Browser the specs run in (env STF_BROWSER)")
	pf.StringVar(&flags.Policy, "policy", "", "How only markers meet the filter set: intersect or filter-first (env STF_POLICY)")
	pf.StringVar(&flags.StoreDriver, "store-driver", "", "Filter store backend: json, sqlite or mysql (env STF_STORE_DRIVER)")
	pf.StringVar(&flags.StoreDSN, "store-dsn", "", "DSN for the sqlite or mysql filter store (env STF_STORE_DSN)")

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report [spec-path]",
		Short: "Report scoped results for spec fixtures",
		Long:  "Evaluate every discovered spec against its recorded outcome stream and the filter set of the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Report.Execute,
	}
	reportCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of specs evaluated in parallel (default STF_PROCESSORS or 4)")
	reportCmd.Flags().StringVarP(&flags.SpecPath, "spec-path", "s", "", "Folder where spec discovery starts")
	reportCmd.Flags().StringVar(&flags.ResultsPath, "results-path", "", "Folder holding <spec>.ndjson outcome streams")
	reportCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter specs by name pattern (supports wildcards, e.g. '*domain*')")
	reportCmd.Flags().BoolVar(&flags.Tree, "tree", false, "Print the annotated tree of every spec")
	reportCmd.Flags().BoolVar(&flags.ShowHidden, "show-hidden", false, "Include tests hidden by the filter set in --tree output")
	rootCmd.AddCommand(reportCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list [spec-path]",
		Short: "List discovered specs",
		Long:  "Scan and list spec fixtures without evaluating them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.SpecPath, "spec-path", "s", "", "Folder where spec discovery starts")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter specs by name pattern (supports wildcards, e.g. '*domain*')")
	listCmd.Flags().BoolVarP(&flags.ShowTests, "tests", "t", false, "List the suites and tests of every spec")
	rootCmd.AddCommand(listCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:   "view [spec]",
		Short: "Open the interactive reporter for one spec",
		Long:  "Display the annotated tree of a spec and follow filter set changes made by other processes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.View.Execute,
	}
	viewCmd.Flags().StringVarP(&flags.SpecPath, "spec-path", "s", "", "Folder where spec discovery starts")
	viewCmd.Flags().StringVar(&flags.ResultsPath, "results-path", "", "Folder holding <spec>.ndjson outcome streams")
	viewCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Pick the first spec matching the name pattern")
	viewCmd.Flags().BoolVar(&flags.ShowHidden, "show-hidden", false, "Start with hidden tests shown")
	rootCmd.AddCommand(viewCmd)

	// Filter command group
	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage the filter set of a run",
	}
	filterSetCmd := &cobra.Command{
		Use:   "set [test-id...]",
		Short: "Replace the filter set of the run",
		Long:  "Store the ids of the tests that matter for the run. Ids are space-joined suite and test titles.",
		RunE:  c.Filter.Set,
	}
	filterSetCmd.Flags().StringVar(&flags.FromPayload, "from-payload", "", "Read ids from a cloud run results JSON payload ('-' for stdin)")
	filterCmd.AddCommand(filterSetCmd)
	filterCmd.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Clear the filter set of the run",
		Args:  cobra.NoArgs,
		RunE:  c.Filter.Dismiss,
	})
	filterCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the filter set of the run, or every run with a stored set",
		Args:  cobra.NoArgs,
		RunE:  c.Filter.Show,
	})
	rootCmd.AddCommand(filterCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the SQL filter store",
		Long:  "Create the filter database and schema for the sqlite or mysql store, optionally importing the JSON store",
		Args:  cobra.NoArgs,
		RunE:  c.Migrate.Execute,
	}
	migrateCmd.Flags().BoolVar(&flags.ImportJSON, "import-json", false, "Copy every run of the JSON filter store into the SQL store")
	migrateCmd.Flags().BoolVar(&flags.Fresh, "fresh", false, "Delete every stored set before importing")
	rootCmd.AddCommand(migrateCmd)
}
