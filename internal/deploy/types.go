// Package deploy drives the staged SSH deployment state machine (spec.md
// §4.9): PENDING -> STAGED -> COMMIT_CHECKED -> COMMITTED -> VERIFIED, with
// FAILED -> ROLLED_BACK on any commit failure. Devices fan out in parallel
// via a worker pool; any commit-check failure aborts the whole deployment
// before a single commit is sent.
package deploy

import (
	"sort"
	"time"

	"github.com/dnaas-fabric/fabricbd/internal/synth"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// State is one step of the per-deployment and per-device state machine.
type State string

const (
	StatePending       State = "PENDING"
	StateStaged        State = "STAGED"
	StateCommitChecked State = "COMMIT_CHECKED"
	StateCommitted     State = "COMMITTED"
	StateVerified      State = "VERIFIED"
	StateFailed        State = "FAILED"
	StateRolledBack    State = "ROLLED_BACK"
)

// DeviceDeploymentState tracks one device's progress through the
// deployment's state machine, independent of its siblings.
type DeviceDeploymentState struct {
	Device  string
	State   State
	Error   string
	Started time.Time
	Ended   time.Time
}

// Deployment is one atomic application of a set of DeviceConfigChanges
// across the devices they touch.
type Deployment struct {
	ID          string
	ServiceName string
	Changes     []synth.DeviceConfigChange
	State       State
	Devices     map[string]*DeviceDeploymentState
	StartedAt   time.Time
	FinishedAt  time.Time
	FailReason  string
}

// tierRank orders fabric tiers core-first (superspine, then spine, then
// leaf), with unknown-role devices placed conservatively last so an
// unclassified device is never rolled back before a confirmed edge device.
func tierRank(r topology.Role) int {
	switch r {
	case topology.RoleSuperspine:
		return 0
	case topology.RoleSpine:
		return 1
	case topology.RoleLeaf:
		return 2
	default:
		return 3
	}
}

// DeviceOrder returns the deployment's devices in dependency order: core
// devices (superspine, then spine) before edge devices (leaf), each tier
// broken ties on device name for determinism. Stage/commit-check/commit
// fan out in parallel regardless of this order, but rollback walks it in
// reverse (spec.md §7: "rollback is ordered by reverse-dependency, edge
// devices before core"), so this order is derived from each device's
// topology role rather than from Changes' (alphabetical) ordering or
// device-name conventions.
func (d *Deployment) DeviceOrder() []string {
	changes := make([]synth.DeviceConfigChange, len(d.Changes))
	copy(changes, d.Changes)
	sort.Slice(changes, func(i, j int) bool {
		ri, rj := tierRank(changes[i].Role), tierRank(changes[j].Role)
		if ri != rj {
			return ri < rj
		}
		return changes[i].Device < changes[j].Device
	})
	order := make([]string, 0, len(changes))
	for _, c := range changes {
		order = append(order, c.Device)
	}
	return order
}

func newDeviceStates(changes []synth.DeviceConfigChange) map[string]*DeviceDeploymentState {
	states := make(map[string]*DeviceDeploymentState, len(changes))
	for _, c := range changes {
		states[c.Device] = &DeviceDeploymentState{Device: c.Device, State: StatePending}
	}
	return states
}

// NewDeployment builds a PENDING deployment ready for Orchestrator.Run.
func NewDeployment(id, serviceName string, changes []synth.DeviceConfigChange) *Deployment {
	return &Deployment{
		ID:          id,
		ServiceName: serviceName,
		Changes:     changes,
		State:       StatePending,
		Devices:     newDeviceStates(changes),
	}
}
