package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/joinsql/cli/internal/ui"
	"github.com/satishbabariya/joinsql/query/executor"
	"github.com/satishbabariya/joinsql/query/joining"
	"github.com/satishbabariya/joinsql/schema"
)

var runCmd = &cobra.Command{
	Use:   "run [query.yaml]",
	Short: "Execute a query document against DATABASE_URL",
	Long: `Plan a query document and execute it against the database named by
DATABASE_URL. Table metadata is read from the database catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var (
	runCount bool
	runRows  int
)

func init() {
	runCmd.Flags().BoolVar(&runCount, "count", false, "Print the number of matching features")
	runCmd.Flags().IntVar(&runRows, "rows", 50, "Maximum number of rows to display (0 for all)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	queryPath := getQueryPath(args)

	doc, err := loadMapping(false)
	if err != nil {
		return err
	}
	q, plan, err := loadQuery(queryPath, doc)
	if err != nil {
		return err
	}

	db, provider, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	d, err := newDialect(provider)
	if err != nil {
		return err
	}
	introspector, err := schema.NewIntrospector(db, provider, cfg.DatabaseSchema)
	if err != nil {
		return err
	}
	planner := joining.NewPlanner(d, schema.NewCachedLookup(introspector, 128, 10*time.Minute))
	runner := executor.NewJoinAwareQueryPlanner(planner, db, executor.WithStatementCache())
	defer runner.Close()

	if runCount {
		count, err := runner.Count(ctx, plan)
		if err != nil {
			return err
		}
		ui.PrintSuccess("%d features", count)
		return nil
	}

	mv, err := q.MultipleValue(plan)
	if err != nil {
		return err
	}
	spinner, err := ui.PrintSpinner("Running " + queryPath)
	if err != nil {
		return err
	}
	var reader *executor.FeatureReader
	if mv != nil {
		reader, err = runner.QueryMultiValues(ctx, plan, mv)
	} else {
		reader, err = runner.Query(ctx, plan)
	}
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	records, err := reader.ReadAll()
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success()

	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		if runRows > 0 && i >= runRows {
			break
		}
		row := make([]string, len(reader.Columns()))
		for j, col := range reader.Columns() {
			v, _ := rec.Get(col)
			row[j] = formatValue(v)
		}
		rows = append(rows, row)
	}
	if err := ui.PrintTable(reader.Columns(), rows); err != nil {
		return err
	}
	if len(plan.Joins) > 0 {
		features := executor.GroupByStep(records, len(plan.Joins)-1)
		ui.PrintInfo("%d rows, %d features (statement %s)", len(records), len(features), reader.StatementID())
	} else {
		ui.PrintInfo("%d rows (statement %s)", len(records), reader.StatementID())
	}
	return nil
}
