// Package transport dials devices over SSH and executes CLI commands,
// keeping one pooled connection per device (spec.md §4.1, §5). The pool
// has no cap on its number of connections, does not evict idle ones, and
// does not serialize concurrent commands to the same device.
package transport

import "context"

// Result is the outcome of one command execution on one device.
type Result struct {
	Device   string
	Command  string
	Output   string
	ExitCode int
}

// Credentials identifies how to reach and authenticate to a device.
type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Transport dials, executes commands on, and tears down connections to
// fabric devices. SSHPool and FakeTransport both implement it.
type Transport interface {
	Dial(ctx context.Context, device string) error
	Close(device string) error
	Exec(ctx context.Context, device, cmd string) (Result, error)
	ExecBatch(ctx context.Context, device string, cmds []string) ([]Result, error)
}
