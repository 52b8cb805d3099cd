package joining_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/joinsql/query/joining"
)

func TestAliasTableAssign(t *testing.T) {
	aliases := joining.NewAliasTable("node")

	alias, aliased := aliases.Assign("owner")
	assert.Equal(t, "owner", alias)
	assert.False(t, aliased)

	tests := []struct {
		table string
		want  string
	}{
		{table: "node", want: "node_1"},
		{table: "node", want: "node_2"},
		{table: "owner", want: "owner_1"},
		{table: "node", want: "node_3"},
	}
	for _, tt := range tests {
		alias, aliased := aliases.Assign(tt.table)
		assert.True(t, aliased)
		assert.Equal(t, tt.want, alias)
		assert.True(t, aliases.Contains(alias))
	}
}

func TestAliasTableTruncatesLongNames(t *testing.T) {
	long := "a_really_long_table_name_for_testing"
	aliases := joining.NewAliasTable(long)

	alias, aliased := aliases.Assign(long)
	assert.True(t, aliased)
	assert.Equal(t, long[:20]+"_1", alias)

	aliases.Add(long[:20] + "_2")
	alias, _ = aliases.Assign(long)
	assert.Equal(t, long[:20]+"_3", alias)
}

func TestCreateAliasIsDeterministic(t *testing.T) {
	used := map[string]bool{"node": true, "node_1": true}
	contains := func(s string) bool { return used[s] }

	first := joining.CreateAlias("node", contains)
	second := joining.CreateAlias("node", contains)
	assert.Equal(t, "node_2", first)
	assert.Equal(t, first, second)
	assert.False(t, strings.HasPrefix(joining.CreateAlias("other", contains), "other_"))
}

func TestAliasTableReserve(t *testing.T) {
	aliases := joining.NewAliasTable("colours")

	alias := aliases.Reserve("unit_colour/colours", "colours")
	assert.Equal(t, "colours_1", alias)
	assert.Equal(t, alias, aliases.Reserve("unit_colour/colours", "colours"))
	assert.Equal(t, "colours_2", aliases.Reserve("rock_colour/colours", "colours"))

	assigned, aliased := aliases.Assign("colours_1")
	assert.True(t, aliased)
	assert.Equal(t, "colours_1_1", assigned)
}
