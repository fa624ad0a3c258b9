package syncer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes one shell command and returns its drained output. It
// must be safe for concurrent use.
type Runner interface {
	Run(ctx context.Context, command string) (stdout, stderr string, err error)
}

// ShellRunner runs commands through `sh -c`, which is what the transfer
// tool's quoting and flag syntax expect.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, command string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Transfer failures surface on stderr and are classified there;
		// the exit status carries no extra information.
		err = nil
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}

	return stdout.String(), stderr.String(), err
}
