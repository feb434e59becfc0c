package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/dicetables/cmd/dicetables/commands"
	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
	"github.com/Sumatoshi-tech/dicetables/pkg/parser"
	"github.com/Sumatoshi-tech/dicetables/pkg/version"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := commands.NewRootCommand()

	var stdout, stderr bytes.Buffer

	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func TestTableCommand_JSON(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "table", "2*Die(2)", "--output", "json")
	require.NoError(t, err)

	var view struct {
		Dice []struct {
			Die   string `json:"die"`
			Count int    `json:"count"`
		} `json:"dice"`
		Rows []struct {
			Roll        int     `json:"roll"`
			Occurrences string  `json:"occurrences"`
			Percent     float64 `json:"percent"`
		} `json:"rows"`
		Total string  `json:"total"`
		Mean  float64 `json:"mean"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &view))

	require.Len(t, view.Dice, 1)
	assert.Equal(t, "1D2", view.Dice[0].Die)
	assert.Equal(t, 2, view.Dice[0].Count)

	require.Len(t, view.Rows, 3)
	assert.Equal(t, 3, view.Rows[1].Roll)
	assert.Equal(t, "2", view.Rows[1].Occurrences)
	assert.InDelta(t, 50.0, view.Rows[1].Percent, 1e-12)
	assert.Equal(t, "4", view.Total)
	assert.InDelta(t, 3.0, view.Mean, 1e-12)
}

func TestTableCommand_IncludeZeroes(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "table", "StrongDie(Die(2), 3)", "-o", "json", "--include-zeroes")
	require.NoError(t, err)

	var view struct {
		Rows []json.RawMessage `json:"rows"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Rows, 4)
}

func TestTableCommand_Text(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "table", "Die(6)", "--no-color")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "1D6\n"), out)
	assert.Contains(t, out, "OCCURRENCES")
	assert.Contains(t, out, "16.67")
	assert.Contains(t, out, "TOTAL")
}

func TestStatsCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "stats", "2*Die(6)", "--query", "7,11", "-o", "json")
	require.NoError(t, err)

	var view map[string]any

	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "7, 11", view["query"])
	assert.Equal(t, "8", view["queryOccurrences"])
	assert.Equal(t, "36", view["totalOccurrences"])
	assert.Equal(t, "4.500", view["oneIn"])
	assert.Equal(t, "22.22", view["percentage"])
	assert.InDelta(t, 2.0, view["min"], 0)
	assert.InDelta(t, 12.0, view["max"], 0)
	assert.InDelta(t, 7.0, view["mean"], 1e-12)
}

func TestStatsCommand_YAML(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "stats", "Die(6)", "-q", "1", "-o", "yaml")
	require.NoError(t, err)

	var view map[string]any

	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, "6.000", view["oneIn"])
	assert.Equal(t, 1, view["min"])
}

func TestStatsCommand_Text(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "stats", "Die(4)", "-q", "9", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Infinity")
	assert.Contains(t, out, "0 of 4")
}

func TestPoolLimitCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "pool-limit", "Die(6)", "--max-keys", "252", "-o", "json")
	require.NoError(t, err)

	var view struct {
		Die         string `json:"die"`
		MaxPoolSize int    `json:"maxPoolSize"`
		Keys        string `json:"keys"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "1D6", view.Die)
	assert.Equal(t, 5, view.MaxPoolSize)
	assert.Equal(t, "252", view.Keys)

	text, _, err := execute(t, "pool-limit", "Die(6)", "--max-keys", "200")
	require.NoError(t, err)
	assert.Equal(t, "1D6: at most 4 dice (126 of 200 keys)\n", text)

	// A d2 pool has n+1 keys, so only the pool size limit holds it back.
	coin, _, err := execute(t, "pool-limit", "Die(2)")
	require.NoError(t, err)
	assert.Equal(t, "1D2: at most 200 dice (201 of 600,000 keys)\n", coin)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var info version.Info

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestCommands_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "bad_output", args: []string{"table", "Die(6)", "-o", "xml"}, want: commands.ErrInvalidOutput},
		{name: "syntax", args: []string{"table", "Die(6"}, want: parser.ErrSyntax},
		{name: "unknown_constructor", args: []string{"stats", "Coin(2)"}, want: parser.ErrUnknownName},
		{name: "die_too_big", args: []string{"table", "Die(501)"}, want: limiter.ErrDieTooBig},
		{name: "pool_budget", args: []string{"pool-limit", "Die(6)", "--max-keys", "0"}, want: limiter.ErrPoolTooBig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, _, err := execute(t, "table")
	assert.Error(t, err, "an expression is required")
}

func TestCommands_ConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dicetables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  max_size: 10\nstats:\n  decimal_places: 1\n"), 0o600))

	_, _, err := execute(t, "--config", path, "table", "Die(12)")
	require.ErrorIs(t, err, parser.ErrLimit)

	out, _, err := execute(t, "--config", path, "stats", "2*Die(6)", "-o", "json")
	require.NoError(t, err)

	var view map[string]any

	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.InDelta(t, 2.4, view["stddev"], 1e-12)
}

func TestCommands_VerboseLogsToStderr(t *testing.T) {
	t.Parallel()

	out, stderr, err := execute(t, "--verbose", "table", "BestOfDicePool(Die(6), 4, 3)", "-o", "json")
	require.NoError(t, err)

	assert.NotEmpty(t, out)
	assert.Contains(t, stderr, "configuration loaded")
	assert.Contains(t, stderr, "pool cache")
	assert.Contains(t, stderr, "service=dicetables")
}
