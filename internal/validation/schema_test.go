package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validConfigYAML = `paths:
  submissions: ../task_submissions/submissions
  ground_truth: ../task_submissions/ground_truth
bootstrap:
  resamples: 200
  confidence_level: 0.9
  method: percentile
  seed: 7
output:
  format: markdown
keep_going: true
`

const invalidConfigYAML = `bootstrap:
  resamples: 0
  confidence_level: 1.5
  method: bca
output:
  format: csv
`

func TestParseConfigBytes_Valid(t *testing.T) {
	doc, violations, err := ParseConfigBytes([]byte(validConfigYAML))
	require.NoError(t, err)
	require.Empty(t, violations, "valid config should have no violations")

	bootstrap, ok := doc["bootstrap"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(200), bootstrap["resamples"])
	require.Equal(t, true, doc["keep_going"])
}

func TestParseConfigBytes_Invalid(t *testing.T) {
	_, violations, err := ParseConfigBytes([]byte(invalidConfigYAML))
	require.NoError(t, err)
	require.NotEmpty(t, violations)

	joined := joinErrs(violations)
	require.Contains(t, joined, "/bootstrap/resamples")
	require.Contains(t, joined, "/bootstrap/confidence_level")
	require.Contains(t, joined, "/bootstrap/method")
	require.Contains(t, joined, "/output/format")
}

func TestParseConfigBytes_UnknownKey(t *testing.T) {
	_, violations, err := ParseConfigBytes([]byte("paths:\n  results: out/\n"))
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	require.Contains(t, joinErrs(violations), "/paths")
}

func TestParseConfigBytes_NegativeSeedAllowed(t *testing.T) {
	_, violations, err := ParseConfigBytes([]byte("bootstrap:\n  seed: -1\n"))
	require.NoError(t, err)
	require.Empty(t, violations)
}

func TestParseConfigBytes_Empty(t *testing.T) {
	doc, violations, err := ParseConfigBytes(nil)
	require.NoError(t, err)
	require.Empty(t, violations)
	require.Empty(t, doc)
}

func TestParseConfigBytes_NotAMapping(t *testing.T) {
	_, violations, err := ParseConfigBytes([]byte("- a\n- b\n"))
	require.NoError(t, err)
	require.NotEmpty(t, violations)
}

func TestParseConfigBytes_BadYAML(t *testing.T) {
	_, _, err := ParseConfigBytes([]byte("bootstrap: [not valid yaml\n  this is broken\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "YAML parse error")
}

func joinErrs(errs []string) string {
	return strings.Join(errs, "\n")
}
