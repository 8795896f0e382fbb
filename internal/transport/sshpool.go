package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/dnaas-fabric/fabricbd/internal/util"
)

const (
	maxReconnectAttempts = 3
	reconnectBaseDelay   = 500 * time.Millisecond
)

// SSHPool holds one pooled *ssh.Client per device, dialed lazily and
// reused across Exec calls (teacher pkg/device/tunnel.go's session-per-exec
// idiom, extended with pooling and reconnect).
type SSHPool struct {
	creds          map[string]Credentials
	commandTimeout time.Duration
	dialTimeout    time.Duration

	mu      sync.Mutex
	clients map[string]*ssh.Client
}

// NewSSHPool builds a pool keyed by device name, dialing with the supplied
// per-device credentials on first use.
func NewSSHPool(creds map[string]Credentials, dialTimeout, commandTimeout time.Duration) *SSHPool {
	if dialTimeout == 0 {
		dialTimeout = 30 * time.Second
	}
	if commandTimeout == 0 {
		commandTimeout = 30 * time.Second
	}
	return &SSHPool{
		creds:          creds,
		dialTimeout:    dialTimeout,
		commandTimeout: commandTimeout,
		clients:        make(map[string]*ssh.Client),
	}
}

func (p *SSHPool) dial(device string) (*ssh.Client, error) {
	cred, ok := p.creds[device]
	if !ok {
		return nil, util.NewUnreachable(device, fmt.Errorf("no credentials configured"))
	}
	port := cred.Port
	if port == 0 {
		port = 22
	}
	config := &ssh.ClientConfig{
		User:            cred.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cred.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         p.dialTimeout,
	}
	addr := fmt.Sprintf("%s:%d", cred.Host, port)

	var lastErr error
	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		client, err := ssh.Dial("tcp", addr, config)
		if err == nil {
			return client, nil
		}
		if isAuthError(err) {
			return nil, util.NewAuthFailed(device, err)
		}
		lastErr = err
		if attempt < maxReconnectAttempts-1 {
			time.Sleep(reconnectBaseDelay << attempt)
		}
	}
	return nil, util.NewUnreachable(device, lastErr)
}

// isAuthError reports whether err reflects a rejected credential rather
// than an unreachable host. x/crypto/ssh does not export a typed auth
// error, so this matches the handshake failure text it produces.
func isAuthError(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}

// Dial establishes (or reuses) the pooled connection for device.
func (p *SSHPool) Dial(ctx context.Context, device string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.clients[device]; ok {
		return nil
	}
	client, err := p.dial(device)
	if err != nil {
		return err
	}
	p.clients[device] = client
	return nil
}

// Close tears down the pooled connection for device, if any.
func (p *SSHPool) Close(device string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	client, ok := p.clients[device]
	if !ok {
		return nil
	}
	delete(p.clients, device)
	return client.Close()
}

func (p *SSHPool) client(ctx context.Context, device string) (*ssh.Client, error) {
	p.mu.Lock()
	client, ok := p.clients[device]
	p.mu.Unlock()
	if ok {
		return client, nil
	}
	if err := p.Dial(ctx, device); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clients[device], nil
}

// Exec runs one command on device via a fresh SSH session over the pooled
// client, bounded by the pool's command timeout or ctx, whichever is
// tighter.
func (p *SSHPool) Exec(ctx context.Context, device, cmd string) (Result, error) {
	client, err := p.client(ctx, device)
	if err != nil {
		return Result{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		return Result{}, util.NewUnreachable(device, err)
	}
	defer session.Close()

	deadline := p.commandTimeout
	type execResult struct {
		output []byte
		err    error
	}
	done := make(chan execResult, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- execResult{output: out, err: err}
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return Result{}, util.NewTimeout(device, cmd)
	case <-time.After(deadline):
		session.Close()
		return Result{}, util.NewTimeout(device, cmd)
	case res := <-done:
		if res.err != nil {
			exitCode := -1
			if ee, ok := res.err.(*ssh.ExitError); ok {
				exitCode = ee.ExitStatus()
			}
			return Result{Device: device, Command: cmd, Output: string(res.output), ExitCode: exitCode},
				util.NewRemoteError(device, cmd, exitCode, string(res.output))
		}
		return Result{Device: device, Command: cmd, Output: string(res.output), ExitCode: 0}, nil
	}
}

// ExecBatch runs cmds in order on device, stopping at the first failure.
func (p *SSHPool) ExecBatch(ctx context.Context, device string, cmds []string) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := p.Exec(ctx, device, cmd)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
