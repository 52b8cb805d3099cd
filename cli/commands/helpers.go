package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/satishbabariya/joinsql/cli/internal/config"
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/document"
	"github.com/satishbabariya/joinsql/query/joining"
)

var (
	errNoDatabase         = errors.New("DATABASE_URL is not set")
	errInvalidMaxFeatures = errors.New("max features must be a positive integer")
)

// loadMapping reads the configured mapping document. A missing file is
// only an error when required is set.
func loadMapping(required bool) (*mapping.Document, error) {
	if _, err := config.AppFs.Stat(cfg.MappingPath); err != nil {
		if !required && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mapping file not found: %s", cfg.MappingPath)
	}
	return mapping.LoadFile(config.AppFs, cfg.MappingPath)
}

// getQueryPath returns the query document path: the first argument, else query.yaml
func getQueryPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "query.yaml"
}

// loadQuery reads a query document and converts it into a plan
func loadQuery(path string, doc *mapping.Document) (*document.Query, joining.QueryPlan, error) {
	q, err := document.LoadFile(config.AppFs, path)
	if err != nil {
		return nil, joining.QueryPlan{}, err
	}
	var mappings *mapping.Set
	if doc != nil {
		mappings = doc.Mappings
	}
	plan, err := q.Plan(mappings)
	if err != nil {
		return nil, joining.QueryPlan{}, err
	}
	if q.MaxFeatures == 0 && cfg.MaxFeatures > 0 {
		plan.MaxFeatures = cfg.MaxFeatures
	}
	return q, plan, nil
}

func newDialect(provider string) (dialect.Dialect, error) {
	var opts []dialect.Option
	if cfg.DatabaseSchema != "" {
		opts = append(opts, dialect.WithSchema(cfg.DatabaseSchema))
	}
	return dialect.ByName(provider, opts...)
}

// openDatabase connects to DATABASE_URL and returns the provider used
func openDatabase() (*sql.DB, string, error) {
	if cfg.DatabaseURL == "" {
		return nil, "", errNoDatabase
	}
	provider := cfg.Dialect
	if provider == "" || provider == "generic" {
		provider = detectProvider(cfg.DatabaseURL)
	}
	db, err := sql.Open(normalizeProviderForDriver(provider), cfg.DatabaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	return db, provider, nil
}

func detectProvider(connStr string) string {
	switch {
	case strings.Contains(connStr, "mysql"):
		return "mysql"
	case strings.Contains(connStr, "sqlserver"):
		return "sqlserver"
	case strings.Contains(connStr, "duckdb"), strings.HasSuffix(connStr, ".duckdb"):
		return "duckdb"
	case strings.Contains(connStr, "sqlite"), strings.HasPrefix(connStr, "file:"):
		return "sqlite"
	}
	return "postgresql"
}

// normalizeProviderForDriver maps provider names to database/sql driver names
func normalizeProviderForDriver(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgres"
	case "sqlite":
		return "sqlite3"
	case "mssql":
		return "sqlserver"
	default:
		return provider
	}
}

// formatValue renders a scanned value for table output
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(x))
	default:
		return fmt.Sprint(x)
	}
}
