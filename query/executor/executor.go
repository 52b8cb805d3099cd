// Package executor runs joining statements against a database and streams
// the resulting rows.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/satishbabariya/joinsql/internal/debug"
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/joining"
	"github.com/satishbabariya/joinsql/telemetry"
)

// QueryExecutor runs SQL. *sql.DB, *sql.Tx and *sql.Conn satisfy it, so
// statements can run inside a caller's transaction.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Option configures a JoinAwareQueryPlanner
type Option func(*JoinAwareQueryPlanner)

// WithStatementCache keeps prepared statements per SQL text. It only has
// an effect when the executor can prepare statements.
func WithStatementCache() Option {
	return func(q *JoinAwareQueryPlanner) {
		if p, ok := q.exec.(preparer); ok {
			q.prep = p
			q.stmtCache = make(map[string]*sql.Stmt)
		}
	}
}

// JoinAwareQueryPlanner plans joining statements and executes them
type JoinAwareQueryPlanner struct {
	planner *joining.Planner
	exec    QueryExecutor

	prep      preparer
	stmtCache map[string]*sql.Stmt
	cacheMu   sync.RWMutex
}

// NewJoinAwareQueryPlanner creates a planner executing through exec
func NewJoinAwareQueryPlanner(planner *joining.Planner, exec QueryExecutor, opts ...Option) *JoinAwareQueryPlanner {
	q := &JoinAwareQueryPlanner{planner: planner, exec: exec}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Planner returns the statement planner
func (q *JoinAwareQueryPlanner) Planner() *joining.Planner {
	return q.planner
}

// Query runs the joining select for plan. The caller must close the reader.
func (q *JoinAwareQueryPlanner) Query(ctx context.Context, plan joining.QueryPlan) (*FeatureReader, error) {
	st, err := q.planner.BuildSelectStatement(ctx, plan)
	if err != nil {
		return nil, err
	}
	return q.query(ctx, st)
}

// QueryMultiValues runs the side-table select of mv for the features of plan
func (q *JoinAwareQueryPlanner) QueryMultiValues(ctx context.Context, plan joining.QueryPlan, mv *mapping.MultipleValue) (*FeatureReader, error) {
	st, err := q.planner.BuildMultiValueStatement(ctx, plan, mv)
	if err != nil {
		return nil, err
	}
	return q.query(ctx, st)
}

// Count returns the number of root features matched by plan, reduced by
// the start index and capped at the page size when the plan is paged
func (q *JoinAwareQueryPlanner) Count(ctx context.Context, plan joining.QueryPlan) (int64, error) {
	st, err := q.planner.BuildCountStatement(ctx, plan)
	if err != nil {
		return 0, err
	}
	id := statementID()
	debug.Debug("executing count", "statement", id, "sql", st.SQL, "args", len(st.Args))

	var count int64
	err = q.queryRow(ctx, st).Scan(&count)
	telemetry.RecordExecution(err)
	if err != nil {
		debug.Error("count failed", "statement", id, "error", err)
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return clampCount(count, plan), nil
}

func clampCount(count int64, plan joining.QueryPlan) int64 {
	count -= int64(plan.StartIndex)
	if count < 0 {
		count = 0
	}
	if plan.MaxFeatures > 0 && plan.MaxFeatures < joining.UnboundedMaxFeatures && count > int64(plan.MaxFeatures) {
		count = int64(plan.MaxFeatures)
	}
	return count
}

func (q *JoinAwareQueryPlanner) query(ctx context.Context, st *joining.Statement) (*FeatureReader, error) {
	id := statementID()
	debug.Debug("executing select", "statement", id, "sql", st.SQL, "args", len(st.Args))

	var (
		rows *sql.Rows
		err  error
	)
	if stmt, perr := q.cachedStmt(ctx, st.SQL); perr != nil {
		err = perr
	} else if stmt != nil {
		rows, err = stmt.QueryContext(ctx, st.Args...)
	} else {
		rows, err = q.exec.QueryContext(ctx, st.SQL, st.Args...)
	}
	telemetry.RecordExecution(err)
	if err != nil {
		debug.Error("select failed", "statement", id, "error", err)
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return newFeatureReader(id, rows, st.Joins)
}

func (q *JoinAwareQueryPlanner) queryRow(ctx context.Context, st *joining.Statement) rowScanner {
	stmt, err := q.cachedStmt(ctx, st.SQL)
	if err != nil {
		return errRow{err: err}
	}
	if stmt != nil {
		return stmt.QueryRowContext(ctx, st.Args...)
	}
	return q.exec.QueryRowContext(ctx, st.SQL, st.Args...)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// cachedStmt returns a prepared statement for query, or nil when caching is off
func (q *JoinAwareQueryPlanner) cachedStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	if q.prep == nil {
		return nil, nil
	}
	q.cacheMu.RLock()
	stmt, ok := q.stmtCache[query]
	q.cacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	stmt, err := q.prep.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	q.cacheMu.Lock()
	defer q.cacheMu.Unlock()
	if cached, ok := q.stmtCache[query]; ok {
		stmt.Close()
		return cached, nil
	}
	q.stmtCache[query] = stmt
	return stmt, nil
}

// Close releases cached prepared statements
func (q *JoinAwareQueryPlanner) Close() error {
	q.cacheMu.Lock()
	defer q.cacheMu.Unlock()

	var first error
	for query, stmt := range q.stmtCache {
		if err := stmt.Close(); err != nil && first == nil {
			first = err
		}
		delete(q.stmtCache, query)
	}
	return first
}

func statementID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
