package joining_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/dialect"
	"github.com/satishbabariya/joinsql/query/encoder"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/query/joining"
)

func TestPredicateEncoderNested(t *testing.T) {
	geo := geologyMappings()

	tests := []struct {
		name   string
		filter string
		want   string
	}{
		{
			name:   "simple attribute",
			filter: "gml:name = 'x'",
			want:   "mapped_feature.name = 'x'",
		},
		{
			name:   "one hop",
			filter: unitName + " = 'granite'",
			want: "EXISTS (SELECT chain_link_1.id FROM geologic_unit chain_link_1 " +
				"WHERE chain_link_1.name = 'granite' AND mapped_feature.unit_id = chain_link_1.id)",
		},
		{
			name:   "two hops",
			filter: lithologyLabel + " = 'schist'",
			want: "EXISTS (SELECT chain_link_2.id FROM lithology chain_link_2 " +
				"INNER JOIN geologic_unit chain_link_1 ON chain_link_1.lithology_id = chain_link_2.id " +
				"WHERE chain_link_2.label = 'schist' AND mapped_feature.unit_id = chain_link_1.id)",
		},
		{
			name:   "combined with a local predicate",
			filter: "gml:name = 'x' AND " + unitName + " = 'granite'",
			want: "(mapped_feature.name = 'x' AND EXISTS (SELECT chain_link_1.id FROM geologic_unit chain_link_1 " +
				"WHERE chain_link_1.name = 'granite' AND mapped_feature.unit_id = chain_link_1.id))",
		},
		{
			name:   "multi-valued leaf",
			filter: "gsml:specification/gsml:GeologicUnit/gsml:colour = 'red'",
			want: "EXISTS (SELECT chain_link_1.id FROM geologic_unit chain_link_1 " +
				"LEFT JOIN unit_colour colours ON chain_link_1.id = colours.unit_id " +
				"WHERE colours.colour = 'red' AND mapped_feature.unit_id = chain_link_1.id)",
		},
		{
			name:   "nested feature exists",
			filter: "gsml:specification IS NOT NULL",
			want: "EXISTS (SELECT chain_link_1.id FROM geologic_unit chain_link_1 " +
				"WHERE mapped_feature.unit_id = chain_link_1.id)",
		},
		{
			name:   "nested feature missing",
			filter: "gsml:specification IS NULL",
			want: "NOT EXISTS (SELECT chain_link_1.id FROM geologic_unit chain_link_1 " +
				"WHERE mapped_feature.unit_id = chain_link_1.id)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := mapping.Unmap(filter.MustParse(tt.filter), geo.feature)
			require.NoError(t, err)

			pe := joining.NewPredicateEncoder(context.Background(), dialect.NewGeneric(), testCatalog(), geo.feature, "mapped_feature", "", nil)
			sql, err := pe.Encode(f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestPredicateEncoderAliasedRoot(t *testing.T) {
	geo := geologyMappings()
	f, err := mapping.Unmap(filter.MustParse(unitName+" = 'granite'"), geo.feature)
	require.NoError(t, err)

	pe := joining.NewPredicateEncoder(context.Background(), dialect.NewGeneric(), testCatalog(), geo.feature, "mapped_feature", "mapped_feature_1", nil)
	sql, err := pe.Encode(f)
	require.NoError(t, err)
	assert.Contains(t, sql, "AND mapped_feature_1.unit_id = chain_link_1.id)")
}

func TestPredicateEncoderPreparedSharesParameters(t *testing.T) {
	geo := geologyMappings()
	f, err := mapping.Unmap(filter.MustParse("gml:name = 'x' AND "+unitName+" = 'granite'"), geo.feature)
	require.NoError(t, err)

	params := encoder.NewParams()
	pe := joining.NewPredicateEncoder(context.Background(), dialect.NewPostgres(), testCatalog(), geo.feature, "mapped_feature", "", params)
	sql, err := pe.Encode(f)
	require.NoError(t, err)

	assert.Equal(t, `("mapped_feature"."name" = $1 AND EXISTS (SELECT "chain_link_1"."id" FROM "geologic_unit" "chain_link_1" `+
		`WHERE "chain_link_1"."name" = $2 AND "mapped_feature"."unit_id" = "chain_link_1"."id"))`, sql)
	assert.Equal(t, []any{"x", "granite"}, params.Values())
}

func TestPredicateEncoderMultiValueJoins(t *testing.T) {
	geo := geologyMappings()
	f, err := mapping.Unmap(filter.MustParse("gsml:colour = 'red' OR gsml:colour = 'blue'"), geo.unit)
	require.NoError(t, err)

	pe := joining.NewPredicateEncoder(context.Background(), dialect.NewGeneric(), testCatalog(), geo.unit, "geologic_unit", "", nil)
	sql, err := pe.Encode(f)
	require.NoError(t, err)
	assert.Equal(t, "(colours.colour = 'red' OR colours.colour = 'blue')", sql)

	joins, err := pe.MultiValueJoins(f)
	require.NoError(t, err)
	assert.Len(t, joins, 1)
}

func TestPredicateEncoderErrors(t *testing.T) {
	geo := geologyMappings()

	tests := []struct {
		name    string
		mapping *mapping.FeatureTypeMapping
		filter  filter.Filter
		want    error
	}{
		{
			name:    "cross nested comparison",
			mapping: geo.feature,
			filter: filter.Compare{
				Op:    filter.OpEqual,
				Left:  filter.NestedAttribute{Path: unitName},
				Right: filter.NestedAttribute{Path: lithologyLabel},
			},
			want: joining.ErrUnsupportedFilter,
		},
		{
			name:    "unmapped nested attribute",
			mapping: geo.feature,
			filter:  filter.Eq(filter.NestedAttribute{Path: "gsml:specification/gsml:GeologicUnit/gsml:age"}, filter.Lit(1)),
			want:    joining.ErrNoSourceExpression,
		},
		{
			name:    "comparison on a nested feature",
			mapping: geo.feature,
			filter:  filter.Eq(filter.NestedAttribute{Path: "gsml:specification"}, filter.Lit(1)),
			want:    joining.ErrUnsupportedFilter,
		},
		{
			name:   "nested without mapping",
			filter: filter.Eq(filter.NestedAttribute{Path: unitName}, filter.Lit(1)),
			want:   joining.ErrMissingMapping,
		},
		{
			name:   "multi-valued without value",
			filter: filter.Eq(filter.MultiValued{ID: "colours", TargetTable: "unit_colour"}, filter.Lit("red")),
			want:   joining.ErrUnsupportedFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := joining.NewPredicateEncoder(context.Background(), dialect.NewGeneric(), testCatalog(), tt.mapping, "mapped_feature", "", nil)
			_, err := pe.Encode(tt.filter)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPredicateEncoderChainLinkAliasAvoidsTable(t *testing.T) {
	geo := geologyMappings()
	f, err := mapping.Unmap(filter.MustParse(unitName+" = 'granite'"), geo.feature)
	require.NoError(t, err)

	pe := joining.NewPredicateEncoder(context.Background(), dialect.NewGeneric(), testCatalog(), geo.feature, "chain_link_1", "", nil)
	sql, err := pe.Encode(f)
	require.NoError(t, err)
	assert.Equal(t, "EXISTS (SELECT chain_link_1_1.id FROM geologic_unit chain_link_1_1 "+
		"WHERE chain_link_1_1.name = 'granite' AND chain_link_1.unit_id = chain_link_1_1.id)", sql)
}

func TestPredicateEncoderEncodeKey(t *testing.T) {
	geo := geologyMappings()
	pe := joining.NewPredicateEncoder(context.Background(), dialect.NewGeneric(), testCatalog(), geo.unit, "geologic_unit", "geologic_unit_1", nil)

	sql, joins, err := pe.EncodeKey(filter.Prop("id"))
	require.NoError(t, err)
	assert.Equal(t, "geologic_unit_1.id", sql)
	assert.Empty(t, joins)

	sql, joins, err = pe.EncodeKey(filter.MultiValued{ID: "colours", TargetTable: "unit_colour", Value: filter.Prop("colour")})
	require.NoError(t, err)
	assert.Equal(t, "colours.colour", sql)
	assert.Len(t, joins, 1)
}
