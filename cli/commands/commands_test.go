package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/cli/internal/config"
	"github.com/satishbabariya/joinsql/cli/internal/ui"
)

const unitQuery = `
type: geologic_unit
mapping: gsml:GeologicUnit
filter: "gml:name = 'granite'"
subset: true
`

func workspace(t *testing.T) afero.Fs {
	t.Helper()
	geology, err := os.ReadFile("../../mapping/testdata/geology.yaml")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/geology.yaml", geology, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/query.yaml", []byte(unitQuery), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/colours.yaml", []byte(unitQuery+"multiValue: colours\n"), 0o644))
	return fs
}

func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	prevOut, prevFs := ui.Out, config.AppFs
	ui.Out, config.AppFs = &out, fs
	t.Cleanup(func() { ui.Out, config.AppFs = prevOut, prevFs })

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	fs := workspace(t)
	common := []string{"--mapping", "/work/geology.yaml", "--dialect", "generic"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "select",
			args: []string{"plan", "/work/query.yaml", "--count=false"},
			want: []string{"SELECT geologic_unit.id, geologic_unit.name, geologic_unit.lithology_id FROM geologic_unit " +
				"WHERE geologic_unit.name = 'granite' ORDER BY geologic_unit.id ASC"},
		},
		{
			name: "count",
			args: []string{"plan", "/work/query.yaml", "--count=true"},
			want: []string{"SELECT COUNT(*) FROM (SELECT DISTINCT geologic_unit.id FROM geologic_unit " +
				"WHERE geologic_unit.name = 'granite') DISTINCT_TABLE"},
		},
		{
			name: "multi-valued",
			args: []string{"plan", "/work/colours.yaml", "--count=false"},
			want: []string{"-- select", "-- multi-valued colours", "FROM unit_colour INNER JOIN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, fs, append(tt.args, common...)...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestPlanCommandPreparedDialect(t *testing.T) {
	out, err := execute(t, workspace(t), "plan", "/work/query.yaml", "--count=false", "--mapping", "/work/geology.yaml", "--dialect", "postgres")
	require.NoError(t, err)
	assert.Contains(t, out, `WHERE "geologic_unit"."name" = $1`)
	assert.Contains(t, out, "granite")
}

func TestPlanCommandMissingMapping(t *testing.T) {
	_, err := execute(t, workspace(t), "plan", "/work/query.yaml", "--count=false", "--mapping", "/work/nope.yaml", "--dialect", "generic")
	assert.ErrorContains(t, err, "mapping file not found")
}

func TestExplainCommand(t *testing.T) {
	out, err := execute(t, workspace(t), "explain", "/work/colours.yaml", "--raw", "--mapping", "/work/geology.yaml", "--dialect", "generic")
	require.NoError(t, err)
	assert.Contains(t, out, "# Plan for `/work/colours.yaml`")
	assert.Contains(t, out, "## select")
	assert.Contains(t, out, "```sql\nSELECT geologic_unit.id")
	assert.Contains(t, out, "## multi-valued colours")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, workspace(t), "validate", "/work/geology.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "gsml:GeologicUnit")
	assert.Contains(t, out, "gsml:colour")
	assert.Contains(t, out, "is valid")
}

func TestValidateCommandUndeclaredTable(t *testing.T) {
	fs := workspace(t)
	require.NoError(t, afero.WriteFile(fs, "/work/broken.yaml", []byte(`
version: "1.0"
tables:
  - name: lithology
    primaryKey: [id]
    columns:
      - {name: id, type: integer}
mappings:
  - name: gsml:Lithology
    table: litho
    attributes:
      - target: gsml:label
        source: label
`), 0o644))

	_, err := execute(t, fs, "validate", "/work/broken.yaml")
	assert.ErrorContains(t, err, "1 problem(s)")
}

func TestInitCommand(t *testing.T) {
	fs := workspace(t)
	_, err := execute(t, fs, "init", "--yes", "--mapping", "/work/geology.yaml", "--dialect", "sqlite")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, ".joinsql.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "dialect: sqlite")
	assert.Contains(t, string(data), "mapping_path: /work/geology.yaml")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, workspace(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "joinsql version")
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "postgres://localhost/geo", want: "postgresql"},
		{url: "user:pw@tcp(localhost:3306)/geo?mysql=1", want: "mysql"},
		{url: "sqlserver://sa@localhost?database=geo", want: "sqlserver"},
		{url: "file:geo.db", want: "sqlite"},
		{url: "/data/geo.duckdb", want: "duckdb"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, detectProvider(tt.url))
		})
	}
	assert.Equal(t, "sqlite3", normalizeProviderForDriver("sqlite"))
	assert.Equal(t, "postgres", normalizeProviderForDriver("postgresql"))
}
