package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepcov/internal/config"
)

func runSimulate(t *testing.T, sample int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunSimulate(context.Background(), &buf, config.Default(), sample))
	return buf.String()
}

func TestSimulate_DefaultSample(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runSimulate(t, 0)

	assert.Contains(t, out, "Login:")
	assert.Contains(t, out, "Good password")
	assert.NotContains(t, out, "Bad password")
	assert.Contains(t, out, `features/step_definitions/login.js:2 ["ana"]`)
	assert.Contains(t, out, "simulated 2 scenarios: 4 passed, 0 pending")
}

func TestSimulate_SampleFlag(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runSimulate(t, 5)

	assert.Contains(t, out, "Bad password")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "simulated 3 scenarios: 6 passed, 1 pending")
}

func TestSimulate_NoFeatures(t *testing.T) {
	inTempDir(t)

	assert.Equal(t, "simulated 0 scenarios: 0 passed, 0 pending\n", runSimulate(t, 0))
}
