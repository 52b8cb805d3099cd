package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/joinsql/cli/internal/config"
	"github.com/satishbabariya/joinsql/cli/internal/version"
	"github.com/satishbabariya/joinsql/internal/debug"
)

var rootCmd = &cobra.Command{
	Use:   "joinsql",
	Short: "Plan and run joining SQL for mapped feature types",
	Long: `joinsql turns query documents into joining SELECT statements.

A query document names the returned table, the join steps leading to the
table the filter applies to, the sort keys and the paging window. Table
metadata and feature type mappings come from the mapping document or, for
run, from the database itself.`,
	Version:           version.Get().String(),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	cfg *config.Config

	rootMappingPath string
	rootDialect     string
	rootDebug       bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootMappingPath, "mapping", "m", "", "Path to the mapping document (default from config)")
	rootCmd.PersistentFlags().StringVarP(&rootDialect, "dialect", "d", "", "SQL dialect (default from config)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Log generated statements")
}

// Execute is the main entry point for the CLI
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("mapping") {
		c.MappingPath = rootMappingPath
	}
	if flags.Changed("dialect") {
		c.Dialect = rootDialect
	}
	if flags.Changed("debug") {
		c.Debug = rootDebug
	}
	cfg = c
	debug.Init(cfg.Debug)
	return nil
}
