package builder

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

type Command struct {
	Name   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner starts a process and waits for it. A process that ran and
// exited non-zero is not an error; the exit code says so.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (int, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr

	err := c.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
