package gotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

func TestRunPassedFromExitCode(t *testing.T) {
	r := &Runner{Command: "sh", BaseArgs: []string{"-c", "exit 0"}}

	res, err := r.Run(context.Background(), domain.RunRequest{})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunFailedFromExitCode(t *testing.T) {
	r := &Runner{Command: "sh", BaseArgs: []string{"-c", "exit 3"}}

	res, err := r.Run(context.Background(), domain.RunRequest{})
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunCommandNotFound(t *testing.T) {
	r := &Runner{Command: "definitely-not-a-test-runner"}

	_, err := r.Run(context.Background(), domain.RunRequest{})
	require.Error(t, err)
}

func TestRunComposesCommandLine(t *testing.T) {
	r := &Runner{Command: "sh", BaseArgs: []string{"-c", "exit 0"}}

	res, err := r.Run(context.Background(), domain.RunRequest{
		Markers: []string{"Live", "Integration"},
		Path:    "pkg",
		Verbose: true,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Command, "-run Live|Integration")
	assert.Contains(t, res.Command, "-v")
	assert.Contains(t, res.Command, "pkg")
}

func TestRunWithMarkers(t *testing.T) {
	pass := &Runner{Command: "sh", BaseArgs: []string{"-c", "exit 0"}}
	fail := &Runner{Command: "sh", BaseArgs: []string{"-c", "exit 1"}}

	assert.True(t, pass.RunWithMarkers(context.Background(), "", "Live"))
	assert.False(t, fail.RunWithMarkers(context.Background(), "", "Live"))
}

func TestDefaultRunnerTargetsAllPackages(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "go", r.Command)
	assert.Equal(t, []string{"test"}, r.BaseArgs)
}
