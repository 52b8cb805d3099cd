package encoder_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/encoder"
	"github.com/satishbabariya/joinsql/query/filter"
)

func TestEncodeInline(t *testing.T) {
	enc := encoder.New(dialect.NewGeneric(), encoder.WithFieldEncoder(func(c string) string {
		return "parcel." + c
	}))

	tests := []struct {
		name   string
		filter filter.Filter
		want   string
	}{
		{name: "include", filter: filter.Include{}, want: "1 = 1"},
		{name: "exclude", filter: filter.Exclude{}, want: "1 = 0"},
		{name: "equal", filter: filter.MustParse("name = 'Bob'"), want: "parcel.name = 'Bob'"},
		{name: "and", filter: filter.MustParse("a = 1 AND b <> 2.5"), want: "(parcel.a = 1 AND parcel.b <> 2.5)"},
		{name: "or not", filter: filter.MustParse("NOT (a = 1) OR b IS NULL"), want: "(NOT (parcel.a = 1) OR parcel.b IS NULL)"},
		{name: "between", filter: filter.MustParse("y BETWEEN 1 AND 2"), want: "parcel.y BETWEEN 1 AND 2"},
		{name: "in", filter: filter.MustParse("k IN ('a', 'b')"), want: "parcel.k IN ('a', 'b')"},
		{name: "empty in", filter: filter.In{Expr: filter.Prop("k")}, want: "1 = 0"},
		{name: "like", filter: filter.MustParse("name LIKE 'Bo%'"), want: "parcel.name LIKE 'Bo%'"},
		{name: "ilike", filter: filter.MustParse("name ILIKE 'bo%'"), want: "LOWER(parcel.name) LIKE LOWER('bo%')"},
		{
			name:   "like custom wildcards",
			filter: filter.Like{Expr: filter.Prop("name"), Pattern: "a*b.c%", Wildcard: "*", Single: ".", Escape: "!"},
			want:   `parcel.name LIKE 'a%b_c\%' ESCAPE '\'`,
		},
		{
			name:   "ignore case compare",
			filter: filter.Compare{Op: filter.OpEqual, Left: filter.Prop("n"), Right: filter.Lit("X"), IgnoreCase: true},
			want:   "LOWER(parcel.n) = LOWER('X')",
		},
		{
			name:   "bbox",
			filter: filter.MustParse("BBOX(geom, 0, 0, 1, 1)"),
			want:   "ST_Intersects(parcel.geom, ST_GeomFromText('POLYGON((0 0,1 0,1 1,0 1,0 0))', 0))",
		},
		{
			name:   "raw",
			filter: filter.Eq(filter.Raw{SQL: "tags.name"}, filter.Lit("x")),
			want:   "tags.name = 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Encode(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodePrepared(t *testing.T) {
	params := encoder.NewParams()
	enc := encoder.New(dialect.NewPostgres(), encoder.WithParams(params))

	got, err := enc.Encode(filter.MustParse("name = 'Bob' AND area > 3"))
	require.NoError(t, err)
	assert.Equal(t, `("name" = $1 AND "area" > $2)`, got)

	// a second encoding against the same statement continues the numbering
	got, err = enc.Derive(encoder.WithFieldEncoder(func(c string) string { return `"t"."` + c + `"` })).
		Encode(filter.MustParse("id = 7"))
	require.NoError(t, err)
	assert.Equal(t, `"t"."id" = $3`, got)

	assert.Equal(t, []any{"Bob", int64(3), int64(7)}, params.Values())
}

func TestEncodePreparedGeometry(t *testing.T) {
	params := encoder.NewParams()
	enc := encoder.New(dialect.NewPostgres(), encoder.WithParams(params))

	got, err := enc.Encode(filter.Spatial{Op: filter.Within, Expr: filter.Prop("geom"), Geometry: orb.Point{1, 2}, SRID: 4326})
	require.NoError(t, err)
	assert.Equal(t, `ST_Within("geom", ST_GeomFromWKB($1, 4326))`, got)
	require.Equal(t, 1, params.Len())
	assert.IsType(t, []byte{}, params.Values()[0])
}

func TestEncodeRejectsUnrewrittenVariants(t *testing.T) {
	enc := encoder.New(dialect.NewGeneric())

	_, err := enc.Encode(filter.Eq(filter.MultiValued{ID: "tags", TargetTable: "tag", Value: filter.Prop("name")}, filter.Lit("x")))
	assert.ErrorIs(t, err, encoder.ErrUnsupportedExpression)

	_, err = enc.Encode(filter.Eq(filter.NestedAttribute{Path: "a/b"}, filter.Lit("x")))
	assert.ErrorIs(t, err, encoder.ErrUnsupportedExpression)
}

func TestPredicateHook(t *testing.T) {
	hook := func(e *encoder.Encoder, f filter.Filter) (string, bool, error) {
		if c, ok := f.(filter.Compare); ok {
			if _, ok := c.Left.(filter.NestedAttribute); ok {
				return "EXISTS (SELECT 1)", true, nil
			}
		}
		return "", false, nil
	}
	enc := encoder.New(dialect.NewGeneric(), encoder.WithPredicateHook(hook))

	got, err := enc.Encode(filter.And{Children: []filter.Filter{
		filter.Eq(filter.NestedAttribute{Path: "a/b"}, filter.Lit(1)),
		filter.Eq(filter.Prop("c"), filter.Lit(2)),
	}})
	require.NoError(t, err)
	assert.Equal(t, "(EXISTS (SELECT 1) AND c = 2)", got)
}
