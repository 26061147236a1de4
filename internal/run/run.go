// Package run starts external tools with a composed environment and streams
// their output through the logging session.
package run

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/crossforge/mason/internal/logging"
)

// ExitError reports a non-zero exit from an external tool. It halts the
// pipeline; no stage after the failing one runs.
type ExitError struct {
	Stage string
	Code  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Stage, e.Code)
}

// Execer is the process-runner boundary. Implementations block until the
// tool exits and return *ExitError for non-zero exits.
type Execer interface {
	Run(stage string, argv []string, env []string, dir string) error
}

// Runner executes argv vectors sequentially. Each call blocks until the tool
// exits.
type Runner struct {
	Log *logging.Session
}

// Run executes argv in dir with the given environment. A nil env inherits the
// orchestrator's environment. The command line and all output are recorded in
// the session log.
func (r *Runner) Run(stage string, argv []string, env []string, dir string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%s: empty command", stage)
	}
	r.Log.Console.Info("run", "stage", stage, "cmd", strings.Join(argv, " "))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	w := r.Log.Writer()
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	w.Close()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if tail := r.Log.Tail(); len(tail) > 0 {
			for _, line := range tail {
				r.Log.Console.Error(line)
			}
		}
		return &ExitError{Stage: stage, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("%s: %w", stage, err)
}
