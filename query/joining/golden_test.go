package joining_test

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/query/joining"
)

func assertGolden(t *testing.T, name string, sql string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sql))
}

func TestGoldenNestedSelect(t *testing.T) {
	geo := geologyMappings()
	f, err := mapping.Unmap(filter.MustParse(unitName+" = 'granite'"), geo.feature)
	require.NoError(t, err)

	st, err := genericPlanner().BuildSelectStatement(context.Background(), joining.QueryPlan{
		TypeName: "mapped_feature",
		Mapping:  geo.feature,
		Filter:   f,
	})
	require.NoError(t, err)
	assertGolden(t, "nested_select", st.SQL)
}

func TestGoldenJoiningCount(t *testing.T) {
	st, err := genericPlanner().BuildCountStatement(context.Background(), joining.QueryPlan{
		TypeName:    "segment",
		MaxFeatures: 2,
		Joins: []joining.JoinDescriptor{
			{Table: "feature", ForeignKey: filter.Prop("id"), JoiningKey: filter.Prop("feature_id")},
		},
	})
	require.NoError(t, err)
	assertGolden(t, "joining_count", st.SQL)
}

func TestGoldenMultiValue(t *testing.T) {
	geo := geologyMappings()
	mv, ok := geo.unit.MultipleValue("colours")
	require.True(t, ok)

	st, err := genericPlanner().BuildMultiValueStatement(context.Background(), joining.QueryPlan{
		TypeName: "geologic_unit",
		Mapping:  geo.unit,
	}, mv)
	require.NoError(t, err)
	assertGolden(t, "multi_value", st.SQL)
}
