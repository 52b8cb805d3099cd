package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Introspector reads table metadata from a live database
type Introspector struct {
	db       *sql.DB
	provider string
	schema   string
}

var _ Lookup = (*Introspector)(nil)

// NewIntrospector creates an introspector for the given provider. An empty
// schema uses the provider default (public, the current database, main or dbo).
func NewIntrospector(db *sql.DB, provider, schema string) (*Introspector, error) {
	switch provider {
	case "postgresql", "postgres":
		provider = "postgres"
		if schema == "" {
			schema = "public"
		}
	case "mysql":
	case "sqlite", "sqlite3":
		provider = "sqlite"
	case "duckdb":
		if schema == "" {
			schema = "main"
		}
	case "sqlserver", "mssql":
		provider = "sqlserver"
		if schema == "" {
			schema = "dbo"
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return &Introspector{db: db, provider: provider, schema: schema}, nil
}

func (i *Introspector) LookupTable(ctx context.Context, name string) (*Table, error) {
	var (
		columns []Column
		pk      *PrimaryKey
		err     error
	)

	if i.provider == "sqlite" {
		columns, pk, err = i.introspectSQLite(ctx, name)
	} else {
		columns, err = i.introspectColumns(ctx, name)
		if err == nil {
			pk, err = i.introspectPrimaryKey(ctx, name)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	return &Table{Name: name, Schema: i.schema, Columns: columns, PrimaryKey: pk}, nil
}

func (i *Introspector) LookupPrimaryKey(ctx context.Context, name string) ([]string, error) {
	if i.provider == "sqlite" {
		_, pk, err := i.introspectSQLite(ctx, name)
		if err != nil {
			return nil, err
		}
		if pk == nil {
			return nil, nil
		}
		return pk.Columns, nil
	}

	pk, err := i.introspectPrimaryKey(ctx, name)
	if err != nil {
		return nil, err
	}
	if pk == nil {
		return nil, nil
	}
	return pk.Columns, nil
}

// introspectColumns reads all columns for a table from information_schema
func (i *Introspector) introspectColumns(ctx context.Context, tableName string) ([]Column, error) {
	var (
		query string
		args  []any
	)

	switch i.provider {
	case "postgres":
		query = `
		SELECT column_name, udt_name, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name = $2
		ORDER BY ordinal_position
	`
		args = []any{i.schema, tableName}
	case "mysql":
		query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		ORDER BY ordinal_position
	`
		args = []any{tableName}
	case "duckdb":
		query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name = ?
		ORDER BY ordinal_position
	`
		args = []any{i.schema, tableName}
	case "sqlserver":
		query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = @p1
		  AND table_name = @p2
		ORDER BY ordinal_position
	`
		args = []any{i.schema, tableName}
	}

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var isNullable string
		if err := rows.Scan(&col.Name, &col.Type, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Nullable = isNullable == "YES"
		col.Geometry = isGeometryType(col.Type)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// introspectPrimaryKey reads the primary key for a table
func (i *Introspector) introspectPrimaryKey(ctx context.Context, tableName string) (*PrimaryKey, error) {
	var (
		query string
		args  []any
	)

	switch i.provider {
	case "postgres":
		query = `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`
		args = []any{i.schema, tableName}
	case "mysql":
		query = `
		SELECT constraint_name, column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`
		args = []any{tableName}
	case "duckdb":
		query = `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = ?
		  AND tc.table_name = ?
		ORDER BY kcu.ordinal_position
	`
		args = []any{i.schema, tableName}
	case "sqlserver":
		query = `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = @p1
		  AND tc.table_name = @p2
		ORDER BY kcu.ordinal_position
	`
		args = []any{i.schema, tableName}
	}

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}
	defer rows.Close()

	var pk *PrimaryKey
	for rows.Next() {
		var constraint, column string
		if err := rows.Scan(&constraint, &column); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		if pk == nil {
			pk = &PrimaryKey{Name: constraint}
		}
		pk.Columns = append(pk.Columns, column)
	}

	return pk, rows.Err()
}

// introspectSQLite reads columns and primary key with PRAGMA table_info,
// whose pk column gives the 1-based position within the key
func (i *Introspector) introspectSQLite(ctx context.Context, tableName string) ([]Column, *PrimaryKey, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(tableName))

	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []Column
	keyed := map[int]string{}
	for rows.Next() {
		var cid, notNull, pkIndex int
		var col Column
		var dflt sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pkIndex); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Nullable = notNull == 0
		col.Geometry = isGeometryType(col.Type)
		columns = append(columns, col)
		if pkIndex > 0 {
			keyed[pkIndex] = col.Name
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if len(keyed) == 0 {
		return columns, nil, nil
	}
	pk := &PrimaryKey{Name: "pk_" + tableName}
	for n := 1; n <= len(keyed); n++ {
		pk.Columns = append(pk.Columns, keyed[n])
	}
	return columns, pk, nil
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
