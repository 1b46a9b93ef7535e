package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// processWaitDelay bounds how long Run waits for stdio to drain after the
// process has been killed.
const processWaitDelay = 5 * time.Second

type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner launches one external engine process and blocks until it is reaped.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

type execRunner struct{}

func NewExecRunner() CommandRunner {
	return &execRunner{}
}

// Run starts the process in its own process group. Cancelling ctx kills the
// whole group, and cmd.Run always waits, so no engine process outlives the call.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = processWaitDelay
	isolateProcessGroup(cmd)

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return result, err
	}

	return result, nil
}
