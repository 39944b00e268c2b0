package executil

import (
	"context"
	"sync"
)

// RecordedCommand is one captured invocation.
type RecordedCommand struct {
	Cmd      string
	Args     []string
	Detached bool
}

// RecordingExecutor captures commands instead of running them.
// Outputs and Errors are keyed by command name (e.g. "notify-send").
// Missing lists commands LookPath should report as absent.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	Outputs map[string][]byte
	Errors  map[string]error
	Missing map[string]bool
}

var _ Executor = (*RecordingExecutor)(nil)

func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record(false, cmd, args...)
}

func (e *RecordingExecutor) Start(cmd string, args ...string) error {
	_, err := e.record(true, cmd, args...)
	return err
}

func (e *RecordingExecutor) LookPath(cmd string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Missing[cmd]
}

// Recorded returns a copy of the captured commands.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RecordedCommand, len(e.Commands))
	copy(out, e.Commands)
	return out
}

func (e *RecordingExecutor) record(detached bool, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: cmd, Args: args, Detached: detached})

	var out []byte
	var err error
	if e.Outputs != nil {
		out = e.Outputs[cmd]
	}
	if e.Errors != nil {
		err = e.Errors[cmd]
	}
	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
