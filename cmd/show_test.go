package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepcov/internal/config"
)

func runShow(t *testing.T, ref string, raw bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunShow(context.Background(), &buf, config.Default(), ref, raw))
	return buf.String()
}

func TestShow_ByPath(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runShow(t, "features/login.feature", false)

	assert.Contains(t, out, "Feature: Login")
	assert.Contains(t, out, "@auth")
	assert.Contains(t, out, "Background:")
	assert.Contains(t, out, "Scenario: Good password")
	assert.Contains(t, out, "@smoke")
	assert.Contains(t, out, "✓ Then they see the dashboard")
	assert.Contains(t, out, "✗ Then they see an error")
}

func TestShow_ByFileName(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	assert.Contains(t, runShow(t, "login.feature", false), "Feature: Login")
	assert.Contains(t, runShow(t, "login", false), "Feature: Login")
	assert.Contains(t, runShow(t, "./features/login.feature", false), "Feature: Login")
}

func TestShow_ByName(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runShow(t, "LOGIN", false)
	assert.Contains(t, out, "features/login.feature")
}

func TestShow_Raw(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	out := runShow(t, "login", true)

	assert.Contains(t, out, "  Scenario: Bad password\n    Given a user \"bob\"")
	assert.NotContains(t, out, "✓")
}

func TestShow_NotFound(t *testing.T) {
	inTempDir(t)
	setupProject(t)

	var buf bytes.Buffer
	err := RunShow(context.Background(), &buf, config.Default(), "checkout", false)
	assert.EqualError(t, err, `feature "checkout" not found`)
}
