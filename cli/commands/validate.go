package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/joinsql/cli/internal/ui"
	"github.com/satishbabariya/joinsql/mapping"
)

var validateCmd = &cobra.Command{
	Use:   "validate [mapping.yaml]",
	Short: "Validate a mapping document",
	Long: `Validate a mapping document.

This command will:
- Parse the document and check its format version
- Link feature chains to their nested mappings
- Check every mapping's source table is declared
- Display the feature types it defines`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.MappingPath = args[0]
	}

	ui.PrintHeader("joinsql", "Validate Mapping")

	doc, err := loadMapping(true)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	problems := checkMapping(doc)
	if len(problems) > 0 {
		for _, p := range problems {
			ui.PrintError("%s", p)
		}
		return fmt.Errorf("%s: %d problem(s)", cfg.MappingPath, len(problems))
	}

	rows := make([][]string, 0)
	for _, name := range doc.Mappings.Names() {
		m, err := doc.Mappings.Get(name)
		if err != nil {
			return err
		}
		var multi, chained []string
		for _, attr := range m.Attributes {
			if attr.MultipleValue != nil {
				multi = append(multi, attr.Target)
			}
			if attr.Chain != nil {
				chained = append(chained, attr.Target+" -> "+attr.Chain.LinkElement)
			}
		}
		rows = append(rows, []string{
			name,
			m.SourceTable,
			fmt.Sprint(len(m.Attributes)),
			strings.Join(multi, ", "),
			strings.Join(chained, ", "),
		})
	}
	if err := ui.PrintTable([]string{"Feature type", "Table", "Attributes", "Multi-valued", "Chained"}, rows); err != nil {
		return err
	}

	ui.PrintSuccess("Mapping %s is valid (version %s, %d tables)", cfg.MappingPath, doc.Version, len(doc.Catalog.Tables()))
	return nil
}

// checkMapping reports mappings whose tables the document does not declare
func checkMapping(doc *mapping.Document) []string {
	declared := map[string]bool{}
	for _, t := range doc.Catalog.Tables() {
		declared[t] = true
	}
	if len(declared) == 0 {
		// tables come from the database
		return nil
	}

	var problems []string
	for _, name := range doc.Mappings.Names() {
		m, err := doc.Mappings.Get(name)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if !declared[m.SourceTable] {
			problems = append(problems, fmt.Sprintf("%s: table %q is not declared", name, m.SourceTable))
		}
		for _, mv := range m.MultipleValues() {
			if !declared[mv.TargetTable] {
				problems = append(problems, fmt.Sprintf("%s: side table %q of %s is not declared", name, mv.TargetTable, mv.ID))
			}
		}
	}
	return problems
}
