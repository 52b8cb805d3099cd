package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/joinsql/cli/internal/ui"
	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/encoder"
	"github.com/satishbabariya/joinsql/query/filter"
)

var explainCmd = &cobra.Command{
	Use:   "explain [query.yaml]",
	Short: "Describe the joins, aliases and SQL of a query document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExplain,
}

var explainRaw bool

func init() {
	explainCmd.Flags().BoolVar(&explainRaw, "raw", false, "Print markdown without terminal rendering")

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	queryPath := getQueryPath(args)
	statements, err := buildStatements(cmd.Context(), queryPath, false)
	if err != nil {
		return err
	}
	md := explainMarkdown(queryPath, statements)
	if explainRaw {
		fmt.Fprint(ui.Out, md)
		return nil
	}
	return ui.PrintMarkdown(md)
}

func explainMarkdown(queryPath string, statements []namedStatement) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Plan for `%s`\n\n", queryPath)

	main := statements[0]
	if len(main.Joins) > 0 {
		sb.WriteString("## Joins\n\n")
		sb.WriteString("| Step | Table | Alias | Foreign key | Joining key | Ids | Sort |\n")
		sb.WriteString("|---|---|---|---|---|---|---|\n")
		for i, j := range main.Joins {
			alias := main.Aliases[i]
			if alias == "" {
				alias = "-"
			}
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | %s |\n",
				i, j.Table, alias, expressionText(j.ForeignKey), expressionText(j.JoiningKey),
				strings.Join(j.IDs, ", "), sortText(j.SortBy))
		}
		sb.WriteString("\n")
	}

	for _, st := range statements {
		fmt.Fprintf(&sb, "## %s\n\n```sql\n%s\n```\n\n", st.Name, st.SQL)
		if len(st.Args) == 0 {
			continue
		}
		sb.WriteString("Parameters:\n\n")
		for i, arg := range st.Args {
			fmt.Fprintf(&sb, "%d. `%v`\n", i+1, arg)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func expressionText(x filter.Expression) string {
	sql, err := encoder.New(dialect.NewGeneric()).EncodeExpression(x)
	if err != nil {
		return fmt.Sprintf("%T", x)
	}
	return sql
}

func sortText(keys []filter.SortBy) string {
	if len(keys) == 0 {
		return "-"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Property + " " + k.Order.String()
	}
	return strings.Join(parts, ", ")
}
