// Package process adapts the domain.Exec contract onto os/exec: the one
// place in the repository that actually launches a subprocess.
package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/forgecode/gomod-prefetch/domain"
)

// OSExec runs cmd with exec.CommandContext, capturing stdout and reporting
// the exit code of a process that ran but failed. A non-nil params.Env is
// used verbatim, without the calling process's environment; a nil
// params.Env is passed through to os/exec unchanged, so the child then
// inherits the calling process's environment.
func OSExec(ctx context.Context, cmd []string, params domain.ExecParams) (string, int, error) {
	if len(cmd) == 0 {
		return "", -1, errors.New("process: empty command")
	}

	command := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	command.Dir = params.Dir
	command.Env = params.Env

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	if err == nil {
		return stdout.String(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), exitErr.ExitCode(), nil
	}

	return stdout.String(), -1, err
}
