package dialect_test

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/query/dialect"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
	}{
		{name: "postgresql", provider: "postgresql", want: "postgres"},
		{name: "postgres", provider: "postgres", want: "postgres"},
		{name: "mysql", provider: "MySQL", want: "mysql"},
		{name: "sqlite3", provider: "sqlite3", want: "sqlite"},
		{name: "duckdb", provider: "duckdb", want: "duckdb"},
		{name: "mssql", provider: "mssql", want: "sqlserver"},
		{name: "empty", provider: "", want: "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dialect.ByName(tt.provider)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := dialect.ByName("oracle")
	assert.ErrorIs(t, err, dialect.ErrUnsupportedDialect)
}

func TestQuoting(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		table   string
		column  string
		want    string
	}{
		{name: "generic safe", dialect: dialect.NewGeneric(), table: "parcel", column: "id", want: "parcel.id"},
		{name: "generic reserved", dialect: dialect.NewGeneric(), table: "user", column: "Name Col", want: `"user"."Name Col"`},
		{name: "postgres", dialect: dialect.NewPostgres(), table: "parcel", column: "id", want: `"parcel"."id"`},
		{name: "postgres embedded quote", dialect: dialect.NewPostgres(), table: `a"b`, column: "id", want: `"a""b"."id"`},
		{name: "mysql", dialect: dialect.NewMySQL(), table: "parcel", column: "id", want: "`parcel`.`id`"},
		{name: "sqlserver", dialect: dialect.NewSQLServer(), table: "parcel", column: "id", want: "[parcel].[id]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.QualifyColumn(tt.table, tt.column))
		})
	}
}

func TestQuoteTableWithSchema(t *testing.T) {
	d := dialect.NewPostgres(dialect.WithSchema("cadastre"))
	assert.Equal(t, `"cadastre"."parcel"`, d.QuoteTable("parcel"))
	assert.Equal(t, `"parcel"`, d.QuoteIdentifier("parcel"))

	g := dialect.NewGeneric()
	assert.Equal(t, "parcel", g.QuoteTable("parcel"))
}

func TestApplyLimitOffset(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		limit   int
		offset  int
		want    string
	}{
		{name: "postgres both", dialect: dialect.NewPostgres(), limit: 2, offset: 0, want: " LIMIT 2 OFFSET 0"},
		{name: "postgres offset only", dialect: dialect.NewPostgres(), limit: -1, offset: 5, want: " OFFSET 5"},
		{name: "postgres nothing", dialect: dialect.NewPostgres(), limit: -1, offset: 0, want: ""},
		{name: "sqlite offset only", dialect: dialect.NewSQLite(), limit: -1, offset: 5, want: " LIMIT -1 OFFSET 5"},
		{name: "mysql offset only", dialect: dialect.NewMySQL(), limit: -1, offset: 5, want: " LIMIT 18446744073709551615 OFFSET 5"},
		{name: "sqlserver both", dialect: dialect.NewSQLServer(), limit: 10, offset: 20, want: " OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY"},
		{name: "sqlserver offset only", dialect: dialect.NewSQLServer(), limit: -1, offset: 3, want: " OFFSET 3 ROWS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			tt.dialect.ApplyLimitOffset(&sb, tt.limit, tt.offset)
			assert.Equal(t, tt.want, sb.String())
		})
	}
}

func TestCapabilities(t *testing.T) {
	assert.True(t, dialect.NewGeneric().IsLimitOffsetSupported())
	assert.False(t, dialect.NewGeneric(dialect.WithoutLimitOffset()).IsLimitOffsetSupported())

	assert.False(t, dialect.NewGeneric().Prepared())
	assert.True(t, dialect.NewPostgres().Prepared())
	assert.False(t, dialect.NewPostgres(dialect.WithPreparedStatements(false)).Prepared())

	assert.Equal(t, "$3", dialect.NewPostgres().Placeholder(3))
	assert.Equal(t, "?", dialect.NewMySQL().Placeholder(3))
	assert.Equal(t, "@p2", dialect.NewSQLServer().Placeholder(2))
}

func TestGeometry(t *testing.T) {
	pg := dialect.NewPostgres()
	assert.Equal(t, `ST_AsEWKB("parcel"."geom")`, pg.EncodeGeometryColumn(`"parcel"."geom"`, 4326))
	assert.Equal(t, "ST_MakeEnvelope(0, 0, 10, 5.5, 4326)", pg.EncodeEnvelope(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 5.5}}, 4326))
	assert.Equal(t, "ST_GeomFromText('POINT(1 2)', 4326)", pg.EncodeGeometryValue("POINT(1 2)", 4326))

	g := dialect.NewGeneric()
	assert.Equal(t, "ST_GeomFromText('POLYGON((0 0,1 0,1 1,0 1,0 0))', 0)", g.EncodeEnvelope(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, 0))

	ms := dialect.NewSQLServer()
	assert.Equal(t, "[t].[g].STIntersects(x) = 1", ms.EncodeSpatialPredicate("Intersects", "[t].[g]", "x"))
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, "'O''Brien'", dialect.NewGeneric().QuoteString("O'Brien"))
	assert.Equal(t, `'a\\b'`, dialect.NewMySQL().QuoteString(`a\b`))
	assert.Equal(t, "N'x'", dialect.NewSQLServer().QuoteString("x"))
}
