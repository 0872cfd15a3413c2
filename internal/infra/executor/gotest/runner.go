package gotest

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

// Runner executes the test suite as a subprocess. Markers become -run
// filters OR-joined into one regexp, so a marker selects every test whose
// name contains it.
type Runner struct {
	Command  string
	BaseArgs []string
}

func NewRunner() *Runner {
	return &Runner{Command: "go", BaseArgs: []string{"test"}}
}

func (r *Runner) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := time.Now()

	args := append([]string{}, r.BaseArgs...)
	if len(req.Markers) > 0 {
		args = append(args, "-run", strings.Join(req.Markers, "|"))
	}
	if req.Verbose {
		args = append(args, "-v")
	}
	path := req.Path
	if path == "" && r.Command == "go" {
		path = "./..."
	}
	if path != "" {
		args = append(args, path)
	}

	cmdline := r.Command + " " + strings.Join(args, " ")
	log.Printf("running suite: %s", cmdline)

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	duration := time.Since(start).Milliseconds()

	exitCode := 0
	if err != nil {
		// a non-zero exit is a result, not an error; anything else is
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			return domain.RunResult{}, fmt.Errorf("run error: %v", err)
		}
	}

	return domain.RunResult{
		Passed:     exitCode == 0,
		ExitCode:   exitCode,
		DurationMS: duration,
		Command:    cmdline,
	}, nil
}

// RunWithMarkers is a convenience wrapper returning only pass/fail.
func (r *Runner) RunWithMarkers(ctx context.Context, path string, markers ...string) bool {
	res, err := r.Run(ctx, domain.RunRequest{Markers: markers, Path: path, Verbose: true})
	if err != nil {
		return false
	}
	return res.Passed
}
