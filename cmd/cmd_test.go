package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethpandaops/schedeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	logger.SetOutput(io.Discard)

	missing := filepath.Join(t.TempDir(), "missing.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", missing}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

func lineFields(output, prefix string) []string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.Fields(line)
		}
	}

	return nil
}

func TestLoadCLIConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadCLIConfig(filepath.Join(t.TempDir(), "none.yaml"), "CASE.yaml")
		require.NoError(t, err)
		assert.Equal(t, "CASE.yaml", cfg.Deck)
		assert.Equal(t, "info", cfg.Logging)
		assert.Equal(t, "memory", cfg.State.Backend)
		assert.Equal(t, ":8080", cfg.API.Addr)
	})

	t.Run("file values", func(t *testing.T) {
		path := testutil.WriteFile(t, "config.yaml", `logging: debug
deck: /data/BASE.yaml
restart:
  time: 2020-01-11
  reportStep: 1
  skipRest: true
api:
  enabled: true
  addr: ":9000"
`)
		cfg, err := LoadCLIConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging)
		assert.Equal(t, "/data/BASE.yaml", cfg.Deck)
		assert.Equal(t, "2020-01-11", cfg.Restart.Time)
		assert.Equal(t, 1, cfg.Restart.ReportStep)
		assert.True(t, cfg.Restart.SkipRest)
		assert.True(t, cfg.API.Enabled)
		assert.Equal(t, ":9000", cfg.API.Addr)
	})

	t.Run("deck flag overrides file", func(t *testing.T) {
		path := testutil.WriteFile(t, "config.yaml", "deck: /data/BASE.yaml\n")
		cfg, err := LoadCLIConfig(path, "OTHER.yaml")
		require.NoError(t, err)
		assert.Equal(t, "OTHER.yaml", cfg.Deck)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := testutil.WriteFile(t, "config.yaml", "deck: [unclosed\n")
		_, err := LoadCLIConfig(path, "")
		require.Error(t, err)
	})
}

func TestScheduleCommands(t *testing.T) {
	deck := testutil.WriteSampleDeck(t)

	out, err := execute(t, "--deck", deck, "schedule", "blocks")
	require.NoError(t, err)
	assert.Equal(t, []string{"STEP", "TYPE", "START", "END", "KEYWORDS"}, lineFields(out, "STEP"))
	assert.Equal(t, []string{"3", "DATES", "2020-02-01", "00:00:00", "open", "WCONPROD"}, lineFields(out, "3 "))

	out, err = execute(t, "--deck", deck, "schedule", "seconds", "1")
	require.NoError(t, err)
	assert.Equal(t, "864000\n", out)

	_, err = execute(t, "--deck", deck, "schedule", "seconds", "9")
	require.Error(t, err)

	_, err = execute(t, "--deck", deck, "schedule", "seconds", "one")
	require.Error(t, err)

	out, err = execute(t, "--deck", deck, "schedule", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule with 4 blocks")
}

func TestActionsCommands(t *testing.T) {
	deck := testutil.WriteSampleDeck(t)
	snapshot := testutil.WriteFile(t, "snapshot.yaml", testutil.SampleSnapshot)

	out, err := execute(t, "--deck", deck, "actions", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"GAS_LIMIT", "2", "1", "0s", "FGOR", ">", "1000"}, lineFields(out, "GAS_LIMIT"))

	out, err = execute(t, "--deck", deck, "actions", "eval", snapshot)
	require.NoError(t, err)
	assert.Equal(t, []string{"CUT_WATER", "true", "OP1", "OP3"}, lineFields(out, "CUT_WATER"))
	assert.Equal(t, []string{"GAS_LIMIT", "false"}, lineFields(out, "GAS_LIMIT"))

	out, err = execute(t, "--deck", deck, "actions", "deps", "--dot=true")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph actionx {"))
	assert.Contains(t, out, `"FGOR" -> "GAS_LIMIT";`)

	out, err = execute(t, "--deck", deck, "actions", "deps", "--dot=false")
	require.NoError(t, err)
	assert.Contains(t, out, "2 actions, 3 vectors, 3 edges")

	_, err = execute(t, "--deck", deck, "actions", "eval", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}

func TestMissingDeck(t *testing.T) {
	_, err := execute(t, "--deck", filepath.Join(t.TempDir(), "none.yaml"), "schedule", "blocks")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
}
