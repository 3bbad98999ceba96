// Package process runs external engines with captured output and a
// bounded wait.
package process

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/chartflow/backend/internal/errors"
)

// waitDelay bounds how long Wait keeps draining pipes after the process
// was killed; grandchildren may hold them open.
const waitDelay = 2 * time.Second

// Result contains the captured output of one run.
// A non-zero ExitCode is a result, not an error.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Command describes one invocation.
type Command struct {
	Path    string
	Args    []string
	Env     map[string]string // added on top of the host environment
	Dir     string
	Timeout time.Duration // zero means no limit beyond ctx
}

// Run executes cmd and waits for it to finish.
//
// Errors are marked with errors.ErrEngineUnavailable when the binary
// cannot be found or started, and errors.ErrTimeout when the deadline
// expires first.
func Run(ctx context.Context, c Command) (*Result, error) {
	if c.Path == "" {
		return nil, errors.Mark(errors.New("no executable configured"), errors.ErrEngineUnavailable)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range c.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if ctxErr == context.DeadlineExceeded {
			return res, errors.Mark(errors.Wrapf(ctxErr, "%s exceeded %s", c.Path, c.Timeout), errors.ErrTimeout)
		}
		return res, errors.Wrapf(ctxErr, "%s cancelled", c.Path)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if isNotFound(err, c.Path) {
			return res, errors.Mark(errors.Wrapf(err, "starting %s", c.Path), errors.ErrEngineUnavailable)
		}
		return res, errors.Wrapf(err, "running %s", c.Path)
	}

	return res, nil
}

// isNotFound reports whether err means the binary itself does not exist.
// A bad working directory, EACCES or ENOEXEC keep their own cause.
func isNotFound(err error, path string) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op != "chdir" && pathErr.Path == path && os.IsNotExist(pathErr.Err)
	}
	return false
}
