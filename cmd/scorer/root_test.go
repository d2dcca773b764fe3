package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autextification/scorer/internal/dataset"
	"github.com/autextification/scorer/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const truthTSV = "id\tlabel\n1\thuman\n2\tgenerated\n3\thuman\n4\tgenerated\n5\thuman\n6\tgenerated\n"

// workspace lays out <dir>/ground_truth and <dir>/submissions and makes dir
// the working directory so no stray .scorer.yaml is picked up.
type workspace struct {
	dir string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()

	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) }) //nolint:errcheck // best-effort cleanup

	ws := &workspace{dir: dir}
	ws.write(t, filepath.Join("ground_truth", "subtask_1", "en", "truth.tsv"), truthTSV)
	return ws
}

func (ws *workspace) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(ws.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (ws *workspace) addRun(t *testing.T, team, run, content string) {
	t.Helper()
	ws.write(t, filepath.Join("submissions", team, "subtask_1", "en", run+".tsv"), content)
}

func (ws *workspace) pathFlags() []string {
	return []string{
		"--submissions_path", filepath.Join(ws.dir, "submissions"),
		"--ground_truth_path", filepath.Join(ws.dir, "ground_truth"),
	}
}

// runCLI executes the root command with stdin detached from any terminal.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

const (
	perfectRun = "id\tlabel\n1\thuman\n2\tgenerated\n3\thuman\n4\tgenerated\n5\thuman\n6\tgenerated\n"
	// Rows shuffled, one mistake on id 4.
	partialRun = "id\tlabel\n6\tgenerated\n5\thuman\n4\thuman\n3\thuman\n2\tgenerated\n1\thuman\n"
	shortRun   = "id\tlabel\n1\thuman\n2\tgenerated\n"
	wrongIDs   = "id\tlabel\n1\thuman\n2\tgenerated\n3\thuman\n4\tgenerated\n5\thuman\n99\tgenerated\n"
)

// ---------------------------------------------------------------------------
// Argument validation
// ---------------------------------------------------------------------------

func TestRootCommand_ArgValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown subtask", args: []string{"subtask_9", "en"}, wantErr: "invalid subtask"},
		{name: "unknown language", args: []string{"subtask_1", "fr"}, wantErr: "invalid language"},
		{name: "one argument", args: []string{"subtask_1"}, wantErr: "received 1 arg(s)"},
		{name: "too many arguments", args: []string{"subtask_1", "en", "extra"}, wantErr: "received 3 arg(s)"},
		{name: "no arguments without a terminal", args: nil, wantErr: "requires <subtask> and <language>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, stdout+stderr, "Usage:", "argument errors should print usage")
		})
	}
}

func TestRootCommand_InvalidFlagValues(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-a", "run1", perfectRun)

	tests := []struct {
		name    string
		flags   []string
		wantErr string
	}{
		{name: "format", flags: []string{"--format", "csv"}, wantErr: "unsupported format"},
		{name: "method", flags: []string{"--method", "bca"}, wantErr: "unknown bootstrap method"},
		{name: "resamples", flags: []string{"--resamples", "0"}, wantErr: "resamples must be at least 1"},
		{name: "confidence", flags: []string{"--confidence", "1.5"}, wantErr: "confidence level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"subtask_1", "en"}, ws.pathFlags()...)
			stdout, stderr, err := runCLI(t, append(args, tt.flags...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NotContains(t, stdout+stderr, "Usage:", "runtime errors should not print usage")
		})
	}
}

// ---------------------------------------------------------------------------
// Scoring
// ---------------------------------------------------------------------------

func TestRootCommand_Leaderboard(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-partial", "run1", partialRun)
	ws.addRun(t, "team-perfect", "run1", perfectRun)
	ws.addRun(t, "team-short", "run1", shortRun)
	ws.addRun(t, "team-ids", "run1", wrongIDs)

	stdout, stderr, err := runCLI(t, append([]string{"subtask_1", "en"}, ws.pathFlags()...)...)
	require.NoError(t, err)

	perfect := strings.Index(stdout, "team-perfect")
	partial := strings.Index(stdout, "team-partial")
	require.NotEqual(t, -1, perfect)
	require.NotEqual(t, -1, partial)
	assert.Less(t, perfect, partial, "higher macro-F1 should be listed first")
	assert.Contains(t, stdout, "1.0000")
	assert.Contains(t, stdout, "mf1_cinterval")
	assert.NotContains(t, stdout, "team-short")
	assert.NotContains(t, stdout, "team-ids")

	assert.Contains(t, stderr, "The number of predicted examples does not match with the reference: team-short")
	assert.Contains(t, stderr, "There is a mismatch between the ids of team team-ids and the ground truth.")
}

func TestRootCommand_NoRuns(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := runCLI(t, append([]string{"subtask_1", "en"}, ws.pathFlags()...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(no runs)")
}

func TestRootCommand_MissingGroundTruth(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := runCLI(t, append([]string{"subtask_2", "es"}, ws.pathFlags()...)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, discovery.ErrTruthNotFound)
}

func TestRootCommand_DuplicateTruthIDs(t *testing.T) {
	ws := newWorkspace(t)
	ws.write(t, filepath.Join("ground_truth", "subtask_1", "en", "truth.tsv"), "id\tlabel\n1\thuman\n1\tgenerated\n")

	_, _, err := runCLI(t, append([]string{"subtask_1", "en"}, ws.pathFlags()...)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrDuplicateIDs)
}

func TestRootCommand_ParseErrorIsFatal(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-broken", "run1", "id\tprediction\n1\thuman\n")
	ws.addRun(t, "team-perfect", "run1", perfectRun)

	_, _, err := runCLI(t, append([]string{"subtask_1", "en"}, ws.pathFlags()...)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
	assert.Contains(t, err.Error(), "team-broken/run1")
}

func TestRootCommand_KeepGoing(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-broken", "run1", "id\tprediction\n1\thuman\n")
	ws.addRun(t, "team-perfect", "run1", perfectRun)

	args := append([]string{"subtask_1", "en", "--keep-going", "--format", "json"}, ws.pathFlags()...)
	stdout, _, err := runCLI(t, args...)
	require.NoError(t, err)

	board := decodeBoard(t, stdout)
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, "team-perfect", board.Leaderboard[0].Team)
	require.Len(t, board.Rejected, 1)
	assert.Equal(t, "parse_error", board.Rejected[0].Reason)
}

func TestRootCommand_SeedIsReproducible(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-partial", "run1", partialRun)

	args := append([]string{"subtask_1", "en", "--format", "json", "--seed", "7"}, ws.pathFlags()...)
	first, _, err := runCLI(t, args...)
	require.NoError(t, err)
	second, _, err := runCLI(t, args...)
	require.NoError(t, err)

	a, b := decodeBoard(t, first), decodeBoard(t, second)
	require.Len(t, a.Leaderboard, 1)
	assert.Equal(t, a.Leaderboard[0].CI, b.Leaderboard[0].CI)
	assert.Equal(t, 100, a.Leaderboard[0].CI.Resamples)
	assert.Equal(t, "basic", a.Leaderboard[0].CI.Method)
	assert.LessOrEqual(t, a.Leaderboard[0].CI.Low, a.Leaderboard[0].CI.High)
}

func TestRootCommand_BootstrapDefaults(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-partial", "run1", partialRun)

	stdout, _, err := runCLI(t, append([]string{"subtask_1", "en", "--format", "json"}, ws.pathFlags()...)...)
	require.NoError(t, err)

	board := decodeBoard(t, stdout)
	require.Len(t, board.Leaderboard, 1)
	ci := board.Leaderboard[0].CI
	assert.Equal(t, 100, ci.Resamples)
	assert.Equal(t, "basic", ci.Method)
	assert.InDelta(t, 0.95, ci.Level, 1e-12)
}

func TestRootCommand_SubmissionsRootMissing(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := runCLI(t, "subtask_1", "en",
		"--submissions_path", filepath.Join(ws.dir, "not-created"),
		"--ground_truth_path", filepath.Join(ws.dir, "ground_truth"),
		"--format", "json")
	require.NoError(t, err)

	board := decodeBoard(t, stdout)
	assert.Empty(t, board.Leaderboard)
	assert.Empty(t, board.Rejected)
}

// ---------------------------------------------------------------------------
// Configuration precedence
// ---------------------------------------------------------------------------

func TestRootCommand_ConfigFile(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-perfect", "run1", perfectRun)
	ws.write(t, ".scorer.yaml", `
paths:
  submissions: submissions
  ground_truth: ground_truth
bootstrap:
  resamples: 25
output:
  format: json
`)

	t.Run("config replaces defaults", func(t *testing.T) {
		stdout, _, err := runCLI(t, "subtask_1", "en")
		require.NoError(t, err)
		board := decodeBoard(t, stdout)
		require.Len(t, board.Leaderboard, 1)
		assert.Equal(t, 25, board.Leaderboard[0].CI.Resamples)
	})

	t.Run("flags override config", func(t *testing.T) {
		stdout, _, err := runCLI(t, "subtask_1", "en", "--format", "markdown", "--resamples", "10")
		require.NoError(t, err)
		assert.Contains(t, stdout, "## Leaderboard: subtask_1 / English (en)")
	})

	t.Run("explicit config path", func(t *testing.T) {
		ws.write(t, "other.yaml", "output:\n  format: junit\npaths:\n  submissions: submissions\n  ground_truth: ground_truth\n")
		stdout, _, err := runCLI(t, "subtask_1", "en", "--config", filepath.Join(ws.dir, "other.yaml"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "<?xml"))
	})

	t.Run("invalid config", func(t *testing.T) {
		ws.write(t, "bad.yaml", "bootstrap:\n  method: bca\n")
		_, _, err := runCLI(t, "subtask_1", "en", "--config", filepath.Join(ws.dir, "bad.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/bootstrap/method")
	})
}

func TestRootCommand_DebugLogging(t *testing.T) {
	ws := newWorkspace(t)
	ws.addRun(t, "team-perfect", "run1", perfectRun)

	_, quiet, err := runCLI(t, append([]string{"subtask_1", "en"}, ws.pathFlags()...)...)
	require.NoError(t, err)
	assert.NotContains(t, quiet, "Loaded ground truth")

	_, verbose, err := runCLI(t, append([]string{"subtask_1", "en", "--debug"}, ws.pathFlags()...)...)
	require.NoError(t, err)
	assert.Contains(t, verbose, "Loaded ground truth")
	assert.Contains(t, verbose, "level=DEBUG")
}

type decodedBoard struct {
	Leaderboard []struct {
		Team string  `json:"team"`
		MF1  float64 `json:"mf1"`
		CI   struct {
			Low       float64 `json:"low"`
			High      float64 `json:"high"`
			Level     float64 `json:"confidence_level"`
			Resamples int     `json:"n_resamples"`
			Method    string  `json:"method"`
		} `json:"mf1_cinterval"`
	} `json:"leaderboard"`
	Rejected []struct {
		Team   string `json:"team"`
		Reason string `json:"reason"`
	} `json:"rejected"`
}

func decodeBoard(t *testing.T, out string) decodedBoard {
	t.Helper()
	var board decodedBoard
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	return board
}
