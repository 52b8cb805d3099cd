package mapping_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/filter"
)

func loadGeology(t *testing.T) *mapping.Document {
	t.Helper()
	doc, err := mapping.LoadFile(afero.NewOsFs(), "testdata/geology.yaml")
	require.NoError(t, err)
	return doc
}

func TestLoadFile(t *testing.T) {
	doc := loadGeology(t)

	assert.Equal(t, "1.0.0", doc.Version.String())
	assert.Equal(t, []string{"gsml:GeologicUnit", "gsml:Lithology", "gsml:MappedFeature"}, doc.Mappings.Names())

	pk, err := doc.Catalog.LookupPrimaryKey(context.Background(), "unit_colour")
	require.NoError(t, err)
	assert.Equal(t, []string{"unit_id", "colour"}, pk)

	unit, err := doc.Mappings.Get("gsml:GeologicUnit")
	require.NoError(t, err)
	mv, ok := unit.MultipleValue("colours")
	require.True(t, ok)
	assert.Equal(t, "unit_colour", mv.TargetTable)
	assert.Equal(t, filter.Prop("colour"), mv.Value)

	_, err = doc.Mappings.Get("gsml:Borehole")
	assert.ErrorIs(t, err, mapping.ErrMappingNotFound)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{name: "missing version", doc: "mappings: []", err: mapping.ErrUnsupportedVersion},
		{name: "future version", doc: `version: "2.1"`, err: mapping.ErrUnsupportedVersion},
		{name: "unknown field", doc: "version: \"1.0\"\nbogus: 1", err: mapping.ErrInvalidMapping},
		{
			name: "dangling link",
			doc: `version: "1.0"
mappings:
  - name: A
    table: a
    attributes:
      - target: b
        source: b_id
        chain: {linkElement: B, linkField: FEATURE_LINK}`,
			err: mapping.ErrMappingNotFound,
		},
		{
			name: "duplicate",
			doc: `version: "1.0"
mappings:
  - {name: A, table: a}
  - {name: A, table: b}`,
			err: mapping.ErrInvalidMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapping.Load([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestResolveFeatureChain(t *testing.T) {
	doc := loadGeology(t)
	root, err := doc.Mappings.Get("gsml:MappedFeature")
	require.NoError(t, err)

	t.Run("not chained", func(t *testing.T) {
		chain, err := mapping.ResolveFeatureChain(root, "gml:name")
		require.NoError(t, err)
		assert.Nil(t, chain)
	})

	t.Run("one hop", func(t *testing.T) {
		chain, err := mapping.ResolveFeatureChain(root, "gsml:specification/gsml:GeologicUnit/gml:name")
		require.NoError(t, err)
		require.NotNil(t, chain)
		require.Equal(t, 2, chain.Size())
		assert.Equal(t, "gml:name", chain.AttributePath)

		assert.Equal(t, "mapped_feature", chain.Links[0].Table)
		assert.Empty(t, chain.Links[0].Alias)
		assert.Equal(t, filter.Prop("unit_id"), chain.Links[0].Source)

		assert.Equal(t, "geologic_unit", chain.Last().Table)
		assert.Equal(t, "chain_link_1", chain.Last().Alias)
		assert.Equal(t, filter.Prop("id"), chain.Last().Target)
	})

	t.Run("two hops", func(t *testing.T) {
		chain, err := mapping.ResolveFeatureChain(root, "gsml:specification/gsml:GeologicUnit/gsml:composition/gsml:Lithology/gsml:label")
		require.NoError(t, err)
		require.Equal(t, 3, chain.Size())
		assert.Equal(t, "gsml:label", chain.AttributePath)
		assert.Equal(t, filter.Prop("lithology_id"), chain.Links[1].Source)
		assert.Equal(t, "chain_link_2", chain.Last().Alias)
	})

	t.Run("feature existence", func(t *testing.T) {
		chain, err := mapping.ResolveFeatureChain(root, "gsml:specification")
		require.NoError(t, err)
		require.Equal(t, 2, chain.Size())
		assert.Empty(t, chain.AttributePath)
	})
}

func TestUnmap(t *testing.T) {
	doc := loadGeology(t)
	unit, err := doc.Mappings.Get("gsml:GeologicUnit")
	require.NoError(t, err)

	f, err := mapping.Unmap(filter.MustParse("gml:name = 'Basalt' AND gsml:colour = 'red' AND gsml:composition/gsml:Lithology/gsml:label = 'x' AND other = 1"), unit)
	require.NoError(t, err)

	and := f.(filter.And)
	assert.Equal(t, filter.Prop("name"), and.Children[0].(filter.Compare).Left)
	assert.Equal(t, filter.MultiValued{ID: "colours", TargetTable: "unit_colour", Value: filter.Prop("colour")}, and.Children[1].(filter.Compare).Left)
	assert.Equal(t, filter.NestedAttribute{Path: "gsml:composition/gsml:Lithology/gsml:label"}, and.Children[2].(filter.Compare).Left)
	assert.Equal(t, filter.Prop("other"), and.Children[3].(filter.Compare).Left)
}

func TestUnroll(t *testing.T) {
	doc := loadGeology(t)
	unit, err := doc.Mappings.Get("gsml:GeologicUnit")
	require.NoError(t, err)

	f, err := mapping.Unroll(filter.MustParse("gml:name = 'Basalt'"), unit)
	require.NoError(t, err)
	assert.Equal(t, filter.Eq(filter.Prop("name"), filter.Lit("Basalt")), f)

	_, err = mapping.Unroll(filter.MustParse("gsml:composition = 'x'"), unit)
	assert.ErrorIs(t, err, mapping.ErrNoSourceExpression)

	_, err = mapping.Unroll(filter.MustParse("unknown = 'x'"), unit)
	assert.ErrorIs(t, err, mapping.ErrNoSourceExpression)
}

func TestRenameProperty(t *testing.T) {
	f, err := mapping.RenameProperty(filter.Eq(filter.NestedAttribute{Path: "a/b/c"}, filter.Lit(1)), "a/b/c", "c")
	require.NoError(t, err)
	assert.Equal(t, filter.Eq(filter.Prop("c"), filter.Lit(1)), f)
}
