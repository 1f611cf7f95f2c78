package devices

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ExecResult captures the output of a finished command. A non-zero exit is
// not an error at this layer; callers decide what the exit code means.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. Tests substitute a fake to exercise
// mount flows without lsblk, pkexec, or real block devices.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*ExecResult, error)
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (*ExecResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// The command never ran (binary missing, context cancelled)
		return nil, err
	}

	return result, nil
}
