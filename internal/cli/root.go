// Package cli implements refctl, the command line client for the reference store.
//
// Every command reads the same environment configuration as the server. The
// store is opened lazily in PersistentPreRunE so --help works without one.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"referensi/internal/app"
	"referensi/internal/config"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var validOutputFormats = []string{outputText, outputJSON, outputYAML}

// noStoreCommands run without opening the store.
var noStoreCommands = map[string]bool{
	"refctl":     true,
	"help":       true,
	"completion": true,
}

// env is the state shared by the subcommands of one invocation.
type env struct {
	cfg        *config.AppConfig
	stack      *app.Stack
	output     string
	driver     string
	sqlitePath string
}

// NewRootCmd builds the refctl command tree. load supplies the base configuration.
func NewRootCmd(load func() *config.AppConfig) *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "refctl",
		Short:         "Search and browse the reference book collection",
		Long:          `refctl runs full-text searches and paginated listings against the reference store configured by the DB_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(validOutputFormats, e.output) {
				return fmt.Errorf("invalid output format: %s (valid: %v)", e.output, validOutputFormats)
			}
			e.cfg = load()
			if e.driver != "" {
				e.cfg.Database.Driver = e.driver
			}
			if e.sqlitePath != "" {
				e.cfg.Database.SQLitePath = e.sqlitePath
			}
			// only migrate writes the schema
			e.cfg.Database.AutoMigrate = cmd.Name() == "migrate"

			if noStoreCommands[topLevelCmdName(cmd)] {
				return nil
			}
			stack, err := app.Open(cmd.Context(), e.cfg)
			if err != nil {
				return err
			}
			e.stack = stack
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.stack != nil {
				return e.stack.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&e.output, "output", "o", outputText, "Output format: text, json, yaml")
	root.PersistentFlags().StringVar(&e.driver, "driver", "", "Override DB_DRIVER (postgres, sqlite)")
	root.PersistentFlags().StringVar(&e.sqlitePath, "sqlite-path", "", "Override SQLITE_PATH")

	root.AddCommand(
		e.newMigrateCmd(),
		e.newSearchCmd(),
		e.newListCmd(),
		e.newCategoriesCmd(),
		e.newDiscoverCmd(),
	)
	return root
}

// topLevelCmdName returns the name of the direct child of root that cmd belongs to.
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs refctl with args and reports whether it failed.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(config.Load)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
