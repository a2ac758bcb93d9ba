package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepcov/internal/config"
)

func runSteps(t *testing.T, missing, matched bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunSteps(context.Background(), &buf, config.Default(), missing, matched))
	return buf.String()
}

func TestSteps_ListsEveryUniqueStep(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runSteps(t, false, false)

	assert.Contains(t, out, "✓ the app is running")
	assert.Contains(t, out, "features/step_definitions/login.js:1")
	assert.Contains(t, out, "✗ they see an error")
	assert.Contains(t, out, "features/login.feature:15")
	assert.Contains(t, out, "86% 6/7 unique steps matched")
}

func TestSteps_DiscoveryOrder(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runSteps(t, false, false)

	first := strings.Index(out, "the app is running")
	last := strings.Index(out, "they see an error")
	assert.Less(t, first, last)
}

func TestSteps_MissingOnly(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runSteps(t, true, false)

	assert.Contains(t, out, "they see an error")
	assert.NotContains(t, out, "the app is running")
	assert.NotContains(t, out, "unique steps matched")
}

func TestSteps_MatchedOnly(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runSteps(t, false, true)

	assert.Contains(t, out, `a user "bob"`)
	assert.NotContains(t, out, "they see an error")
}

func TestSteps_NoFeatures(t *testing.T) {
	inTempDir(t)

	out := runSteps(t, false, false)
	assert.Empty(t, out)
}
