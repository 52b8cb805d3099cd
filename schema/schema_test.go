package schema_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/schema"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	c := schema.NewCatalog(
		&schema.Table{
			Name:       "parcel",
			Columns:    []schema.Column{{Name: "id"}, {Name: "geom", Geometry: true, SRID: 4326}},
			PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		},
		&schema.Table{Name: "log", Columns: []schema.Column{{Name: "msg"}}},
	)

	pk, err := c.LookupPrimaryKey(ctx, "parcel")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pk)

	pk, err = c.LookupPrimaryKey(ctx, "log")
	require.NoError(t, err)
	assert.Empty(t, pk)

	_, err = c.LookupTable(ctx, "missing")
	assert.ErrorIs(t, err, schema.ErrTableNotFound)

	assert.Equal(t, []string{"log", "parcel"}, c.Tables())
}

type countingLookup struct {
	*schema.Catalog
	calls int
}

func (l *countingLookup) LookupTable(ctx context.Context, name string) (*schema.Table, error) {
	l.calls++
	return l.Catalog.LookupTable(ctx, name)
}

func TestCachedLookup(t *testing.T) {
	ctx := context.Background()
	inner := &countingLookup{Catalog: schema.NewCatalog(
		&schema.Table{Name: "a", PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}}},
		&schema.Table{Name: "b"},
		&schema.Table{Name: "c"},
	)}
	cached := schema.NewCachedLookup(inner, 2, time.Minute)

	for i := 0; i < 3; i++ {
		pk, err := cached.LookupPrimaryKey(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, pk)
	}
	assert.Equal(t, 1, inner.calls)

	_, err := cached.LookupTable(ctx, "b")
	require.NoError(t, err)
	_, err = cached.LookupTable(ctx, "c")
	require.NoError(t, err)

	stats := cached.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(2), stats.Hits)

	cached.Invalidate("c")
	_, err = cached.LookupTable(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)

	_, err = cached.LookupTable(ctx, "missing")
	assert.ErrorIs(t, err, schema.ErrTableNotFound)
}

func TestIntrospectorSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `CREATE TABLE membership (group_id INTEGER, user_id INTEGER, role TEXT, PRIMARY KEY (user_id, group_id))`)
	require.NoError(t, err)

	in, err := schema.NewIntrospector(db, "sqlite3", "")
	require.NoError(t, err)

	table, err := in.LookupTable(ctx, "membership")
	require.NoError(t, err)
	assert.Len(t, table.Columns, 3)
	assert.Equal(t, []string{"user_id", "group_id"}, table.PrimaryKeyColumns())

	pk, err := in.LookupPrimaryKey(ctx, "membership")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "group_id"}, pk)

	_, err = in.LookupTable(ctx, "nope")
	assert.ErrorIs(t, err, schema.ErrTableNotFound)

	_, err = schema.NewIntrospector(db, "oracle", "")
	assert.ErrorIs(t, err, schema.ErrUnsupportedProvider)
}
