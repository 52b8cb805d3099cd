package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/joinsql/cli/internal/ui"
	"github.com/satishbabariya/joinsql/cli/internal/watch"
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/joining"
)

var planCmd = &cobra.Command{
	Use:   "plan [query.yaml]",
	Short: "Print the SQL generated for a query document",
	Long: `Print the joining SELECT generated for a query document together with
its bound parameters. Table metadata comes from the mapping document.

With --watch the statement is regenerated whenever the query or the
mapping document is saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

var (
	planCount bool
	planWatch bool
)

func init() {
	planCmd.Flags().BoolVar(&planCount, "count", false, "Print the count statement instead")
	planCmd.Flags().BoolVarP(&planWatch, "watch", "w", false, "Re-plan when the query or mapping file changes")

	rootCmd.AddCommand(planCmd)
}

// namedStatement is a generated statement with a display name
type namedStatement struct {
	Name string
	*joining.Statement
}

// buildStatements plans the select (or count) for a query document, plus the
// side-table select when the document names a multi-valued attribute
func buildStatements(ctx context.Context, queryPath string, count bool) ([]namedStatement, error) {
	doc, err := loadMapping(true)
	if err != nil {
		return nil, err
	}
	q, plan, err := loadQuery(queryPath, doc)
	if err != nil {
		return nil, err
	}
	d, err := newDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	mv, err := q.MultipleValue(plan)
	if err != nil {
		return nil, err
	}
	return planStatements(ctx, joining.NewPlanner(d, doc.Catalog), plan, mv, count)
}

func planStatements(ctx context.Context, planner *joining.Planner, plan joining.QueryPlan, mv *mapping.MultipleValue, count bool) ([]namedStatement, error) {
	if count {
		st, err := planner.BuildCountStatement(ctx, plan)
		if err != nil {
			return nil, err
		}
		return []namedStatement{{Name: "count", Statement: st}}, nil
	}

	st, err := planner.BuildSelectStatement(ctx, plan)
	if err != nil {
		return nil, err
	}
	out := []namedStatement{{Name: "select", Statement: st}}
	if mv == nil {
		return out, nil
	}
	mvst, err := planner.BuildMultiValueStatement(ctx, plan, mv)
	if err != nil {
		return nil, err
	}
	return append(out, namedStatement{Name: "multi-valued " + mv.ID, Statement: mvst}), nil
}

func printStatements(statements []namedStatement) {
	for i, st := range statements {
		if len(statements) > 1 {
			if i > 0 {
				fmt.Fprintln(ui.Out)
			}
			fmt.Fprintf(ui.Out, "-- %s\n", st.Name)
		}
		ui.PrintSQL(st.SQL, st.Args)
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	queryPath := getQueryPath(args)
	render := func() error {
		statements, err := buildStatements(cmd.Context(), queryPath, planCount)
		if err != nil {
			return err
		}
		printStatements(statements)
		return nil
	}

	if !planWatch {
		return render()
	}

	w, err := watch.NewWatcher([]string{queryPath, cfg.MappingPath}, watch.DefaultDebounce, func() error {
		ui.PrintSection(queryPath)
		if err := render(); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	ui.PrintInfo("Watching %s and %s, press Ctrl+C to stop", queryPath, cfg.MappingPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return nil
}
