package deploy

import (
	"context"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/dnaas-fabric/fabricbd/internal/transport"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// Timeouts bounds how long each phase may run, matching spec.md §5's
// defaults (30s per exec, 5m per device, 20m per deployment).
type Timeouts struct {
	Exec       time.Duration
	Device     time.Duration
	Deployment time.Duration
}

func defaultTimeouts() Timeouts {
	return Timeouts{Exec: 30 * time.Second, Device: 5 * time.Minute, Deployment: 20 * time.Minute}
}

// Orchestrator drives Deployments to completion across a worker pool
// bounded at min(64, deviceCount) (spec.md §5/§7).
type Orchestrator struct {
	Transport transport.Transport
	Timeouts  Timeouts
}

// NewOrchestrator returns an Orchestrator with the default timeout profile.
func NewOrchestrator(t transport.Transport) *Orchestrator {
	return &Orchestrator{Transport: t, Timeouts: defaultTimeouts()}
}

func poolSize(n int) int {
	if n > 64 {
		return 64
	}
	if n < 1 {
		return 1
	}
	return n
}

// Run advances dep through STAGED -> COMMIT_CHECKED -> COMMITTED ->
// VERIFIED, aborting into FAILED (and rolling back already-committed
// devices into ROLLED_BACK) on the first phase-wide failure.
func (o *Orchestrator) Run(ctx context.Context, dep *Deployment) error {
	ctx, cancel := context.WithTimeout(ctx, o.Timeouts.Deployment)
	defer cancel()

	order := dep.DeviceOrder()
	pool := pond.NewPool(poolSize(len(order)))
	defer pool.StopAndWait()

	if err := o.runPhase(ctx, pool, dep, StateStaged, o.stageDevice); err != nil {
		dep.State = StateFailed
		dep.FailReason = err.Error()
		return err
	}
	dep.State = StateStaged

	if err := o.runPhase(ctx, pool, dep, StateCommitChecked, o.commitCheckDevice); err != nil {
		dep.State = StateFailed
		dep.FailReason = err.Error()
		return err
	}
	dep.State = StateCommitChecked

	if err := o.runPhase(ctx, pool, dep, StateCommitted, o.commitDevice); err != nil {
		dep.State = StateFailed
		dep.FailReason = err.Error()
		o.rollback(ctx, dep)
		return err
	}
	dep.State = StateCommitted

	if err := o.runPhase(ctx, pool, dep, StateVerified, o.verifyDevice); err != nil {
		dep.State = StateFailed
		dep.FailReason = err.Error()
		return util.NewVerifyFailed(dep.ServiceName, err.Error())
	}
	dep.State = StateVerified

	return nil
}

type deviceStep func(ctx context.Context, dep *Deployment, device string) error

// runPhase fans deviceStep out across every device in dep in parallel,
// cancellable via ctx; the first error aborts the whole phase (commit-check
// failure must abort commit everywhere, per spec.md §4.9).
func (o *Orchestrator) runPhase(ctx context.Context, pool pond.Pool, dep *Deployment, onSuccess State, step deviceStep) error {
	phaseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var firstErr error
	group := pool.NewGroup()

	for _, device := range dep.DeviceOrder() {
		device := device
		group.Submit(func() {
			select {
			case <-phaseCtx.Done():
				return
			default:
			}
			execCtx, execCancel := context.WithTimeout(phaseCtx, o.Timeouts.Device)
			defer execCancel()

			err := step(execCtx, dep, device)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				dep.Devices[device].State = StateFailed
				dep.Devices[device].Error = err.Error()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			dep.Devices[device].State = onSuccess
		})
	}
	group.Wait()
	return firstErr
}

func (o *Orchestrator) stageDevice(ctx context.Context, dep *Deployment, device string) error {
	cmds := forwardCommandsFor(dep, device)
	_, err := o.Transport.ExecBatch(ctx, device, append([]string{"configure candidate"}, cmds...))
	return err
}

func (o *Orchestrator) commitCheckDevice(ctx context.Context, dep *Deployment, device string) error {
	_, err := o.Transport.Exec(ctx, device, "commit check")
	if err != nil {
		return util.NewCommitCheckFailed(device, err)
	}
	return nil
}

func (o *Orchestrator) commitDevice(ctx context.Context, dep *Deployment, device string) error {
	_, err := o.Transport.Exec(ctx, device, "commit")
	if err != nil {
		return util.NewCommitFailed(device, err)
	}
	return nil
}

func (o *Orchestrator) verifyDevice(ctx context.Context, dep *Deployment, device string) error {
	res, err := o.Transport.Exec(ctx, device, "show bridge-domain "+dep.ServiceName)
	if err != nil {
		return util.NewVerifyFailed(device, err.Error())
	}
	if res.Output == "" {
		return util.NewVerifyFailed(device, "empty verification output")
	}
	return nil
}

// rollback applies the inverse commands for every device that reached
// COMMITTED, in reverse dependency order (edge before core, i.e. reverse of
// DeviceOrder's core-first tier ordering derived from each device's
// topology role), and marks them ROLLED_BACK. A rollback failure is
// terminal and logged at Error level unconditionally (spec.md §7).
func (o *Orchestrator) rollback(ctx context.Context, dep *Deployment) {
	order := dep.DeviceOrder()
	for i := len(order) - 1; i >= 0; i-- {
		device := order[i]
		state := dep.Devices[device]
		if state.State != StateCommitted {
			continue
		}
		inverse := inverseCommandsFor(dep, device)
		if _, err := o.Transport.ExecBatch(ctx, device, inverse); err != nil {
			rbErr := util.NewRollbackFailed(device, inverse, err)
			util.WithDevice(device).Error(rbErr.Error())
			state.Error = rbErr.Error()
			continue
		}
		state.State = StateRolledBack
	}
	dep.State = StateRolledBack
}

func forwardCommandsFor(dep *Deployment, device string) []string {
	for _, c := range dep.Changes {
		if c.Device == device {
			return c.Forward
		}
	}
	return nil
}

func inverseCommandsFor(dep *Deployment, device string) []string {
	for _, c := range dep.Changes {
		if c.Device == device {
			return c.Inverse
		}
	}
	return nil
}
