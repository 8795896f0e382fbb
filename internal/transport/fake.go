package transport

import (
	"context"
	"sync"

	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// FakeTransport backs C2-C9 tests with canned per-device, per-command
// output instead of a real SSH fixture (teacher internal/testutil fixture
// style).
type FakeTransport struct {
	mu sync.Mutex

	// Responses maps device -> command -> canned output. A command not
	// present in the map returns empty output with no error.
	Responses map[string]map[string]string
	// Unreachable marks devices whose Dial/Exec calls fail as Unreachable.
	Unreachable map[string]bool
	// FailOn maps device -> command -> true for the Exec calls that fail as
	// RemoteError, independent of Responses — used to simulate
	// mid-deployment failures.
	FailOn map[string]map[string]bool

	dialed  map[string]bool
	history []Result
}

// NewFakeTransport returns an empty FakeTransport ready for per-test setup.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		Responses:   make(map[string]map[string]string),
		Unreachable: make(map[string]bool),
		FailOn:      make(map[string]map[string]bool),
		dialed:      make(map[string]bool),
	}
}

// History returns every Exec call made so far, in order.
func (f *FakeTransport) History() []Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Result, len(f.history))
	copy(out, f.history)
	return out
}

func (f *FakeTransport) Dial(ctx context.Context, device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable[device] {
		return util.NewUnreachable(device, nil)
	}
	f.dialed[device] = true
	return nil
}

func (f *FakeTransport) Close(device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.dialed, device)
	return nil
}

func (f *FakeTransport) Exec(ctx context.Context, device, cmd string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Unreachable[device] {
		return Result{}, util.NewUnreachable(device, nil)
	}
	if f.FailOn[device] != nil && f.FailOn[device][cmd] {
		res := Result{Device: device, Command: cmd, ExitCode: 1, Output: "simulated failure"}
		f.history = append(f.history, res)
		return res, util.NewRemoteError(device, cmd, 1, "simulated failure")
	}
	output := ""
	if byCmd, ok := f.Responses[device]; ok {
		output = byCmd[cmd]
	}
	res := Result{Device: device, Command: cmd, Output: output, ExitCode: 0}
	f.history = append(f.history, res)
	return res, nil
}

func (f *FakeTransport) ExecBatch(ctx context.Context, device string, cmds []string) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := f.Exec(ctx, device, cmd)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
