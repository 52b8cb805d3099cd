package commands

import (
	"slices"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/joinsql/cli/internal/config"
	"github.com/satishbabariya/joinsql/cli/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a .joinsql.yaml config file",
	Long: `Ask for the mapping document, dialect, schema and default page size and
write them to .joinsql.yaml in the current directory, or in
$HOME/.config/joinsql with --global.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initGlobal bool
	initYes    bool
)

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "Write the user config instead of the project config")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept the current values without prompting")

	rootCmd.AddCommand(initCmd)
}

var dialectNames = []string{"postgres", "mysql", "sqlite", "duckdb", "sqlserver", "generic"}

type initAnswers struct {
	MappingPath    string `survey:"mapping"`
	Dialect        string `survey:"dialect"`
	DatabaseSchema string `survey:"schema"`
	MaxFeatures    string `survey:"max"`
}

func runInit(cmd *cobra.Command, args []string) error {
	answers := initAnswers{
		MappingPath:    cfg.MappingPath,
		Dialect:        cfg.Dialect,
		DatabaseSchema: cfg.DatabaseSchema,
		MaxFeatures:    strconv.Itoa(cfg.MaxFeatures),
	}

	if !slices.Contains(dialectNames, answers.Dialect) {
		answers.Dialect = dialectNames[0]
	}

	if !initYes {
		questions := []*survey.Question{
			{
				Name:     "mapping",
				Prompt:   &survey.Input{Message: "Mapping document:", Default: answers.MappingPath},
				Validate: survey.Required,
			},
			{
				Name:   "dialect",
				Prompt: &survey.Select{Message: "SQL dialect:", Options: dialectNames, Default: answers.Dialect},
			},
			{
				Name:   "schema",
				Prompt: &survey.Input{Message: "Database schema (empty for the default):", Default: answers.DatabaseSchema},
			},
			{
				Name:     "max",
				Prompt:   &survey.Input{Message: "Default max features:", Default: answers.MaxFeatures},
				Validate: validateMaxFeatures,
			},
		}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
	}

	maxFeatures, err := strconv.Atoi(answers.MaxFeatures)
	if err != nil {
		return err
	}
	dir := "."
	if initGlobal {
		if dir, err = config.UserConfigDir(); err != nil {
			return err
		}
	}
	path, err := config.SaveConfig(&config.Config{
		MappingPath:    answers.MappingPath,
		Dialect:        answers.Dialect,
		DatabaseSchema: answers.DatabaseSchema,
		MaxFeatures:    maxFeatures,
		Debug:          cfg.Debug,
	}, dir)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Wrote %s", path)
	return nil
}

func validateMaxFeatures(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errInvalidMaxFeatures
	}
	return nil
}
