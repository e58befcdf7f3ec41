package runtime

import (
	"context"
	"io"
	"os/exec"
)

// Runtime launches one agent invocation. The supervisor holds the interface;
// tests substitute a fake.
type Runtime interface {
	Start(ctx context.Context, prompt string, opts RunOptions) (*Process, error)
}

// RunOptions carries the per-invocation knobs the supervisor controls.
type RunOptions struct {
	// Resume continues the previous conversation instead of starting fresh.
	Resume  bool
	Model   string
	WorkDir string
}

// Process is a started agent invocation. Output is the combined
// stdout+stderr stream; Done receives the exit result exactly once.
type Process struct {
	PID    int
	Cmd    *exec.Cmd
	Output io.ReadCloser
	Done   <-chan error
}
