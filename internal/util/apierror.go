package util

import "fmt"

// Kind enumerates the structured error taxonomy surfaced to external
// collaborators (spec.md §6/§7). Every FabricError carries one.
type Kind string

const (
	// Transport (C1)
	KindUnreachable Kind = "Unreachable"
	KindAuthFailed  Kind = "AuthFailed"
	KindTimeout     Kind = "Timeout"
	KindRemoteError Kind = "RemoteError"

	// Parse (C2) — non-fatal, attached to a snapshot rather than returned.
	KindParseAnomaly Kind = "ParseAnomaly"

	// Topology (C3)
	KindHalfEdgeAnomaly    Kind = "HalfEdgeAnomaly"
	KindUnknownRole        Kind = "UnknownRole"
	KindDisconnectedDevice Kind = "DisconnectedDevice"

	// Classification (C5)
	KindUnclassifiedFragment Kind = "UnclassifiedFragment"

	// Consolidation (C6)
	KindLowConfidenceConsolidation Kind = "LowConfidenceConsolidation"
	KindConflictingFragments       Kind = "ConflictingFragments"

	// Pathing (C7)
	KindNoPath            Kind = "NoPath"
	KindCapacityExceeded  Kind = "CapacityExceeded"

	// Intent (C8)
	KindIntentRejected  Kind = "IntentRejected"
	KindInterfaceInUse  Kind = "InterfaceInUse"
	KindVlanConflict    Kind = "VlanConflict"

	// Deployment (C9)
	KindCommitCheckFailed Kind = "CommitCheckFailed"
	KindCommitFailed      Kind = "CommitFailed"
	KindVerifyFailed      Kind = "VerifyFailed"
	KindRollbackFailed    Kind = "RollbackFailed"
)

// FabricError is the structured {kind, message, details} error surfaced to
// every external collaborator (API layer, CLI, audit trail). Never a raw
// string: callers type-assert or inspect Kind() to branch on failure mode.
type FabricError struct {
	ErrKind Kind              `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`

	// Device/Command/State/Inverse are populated for user-visible deployment
	// failures per spec.md §7: "which device(s), which command, which
	// state, and the inverse commands attempted (if any)".
	Devices  []string `json:"devices,omitempty"`
	Command  string   `json:"command,omitempty"`
	State    string   `json:"state,omitempty"`
	Inverse  []string `json:"inverse_commands,omitempty"`

	cause error
}

func (e *FabricError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrKind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Message)
}

func (e *FabricError) Unwrap() error { return e.cause }

// Kind returns the error's taxonomy kind.
func (e *FabricError) Kind() Kind { return e.ErrKind }

// WithDetail attaches a key/value detail and returns the receiver for chaining.
func (e *FabricError) WithDetail(key, value string) *FabricError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithDevices attaches the affected device list.
func (e *FabricError) WithDevices(devices ...string) *FabricError {
	e.Devices = devices
	return e
}

// WithCause wraps an underlying error for errors.Unwrap/errors.Is chains.
func (e *FabricError) WithCause(err error) *FabricError {
	e.cause = err
	return e
}

func newFabricError(kind Kind, format string, args ...interface{}) *FabricError {
	return &FabricError{ErrKind: kind, Message: fmt.Sprintf(format, args...)}
}

// --- Transport (C1) ---

func NewUnreachable(device string, cause error) *FabricError {
	return newFabricError(KindUnreachable, "device %s unreachable", device).WithDevices(device).WithCause(cause)
}

func NewAuthFailed(device string, cause error) *FabricError {
	return newFabricError(KindAuthFailed, "authentication failed for device %s", device).WithDevices(device).WithCause(cause)
}

func NewTimeout(device, command string) *FabricError {
	return newFabricError(KindTimeout, "command timed out on device %s", device).WithDevices(device).withCommand(command)
}

func NewRemoteError(device, command string, exitCode int, stderr string) *FabricError {
	return newFabricError(KindRemoteError, "command failed on device %s (exit %d)", device, exitCode).
		WithDevices(device).withCommand(command).WithDetail("stderr", stderr)
}

func (e *FabricError) withCommand(cmd string) *FabricError {
	e.Command = cmd
	return e
}

// --- Topology (C3) ---

func NewHalfEdgeAnomaly(deviceA, ifaceA, deviceB, ifaceB string) *FabricError {
	return newFabricError(KindHalfEdgeAnomaly, "half-edge mismatch between %s/%s and %s/%s", deviceA, ifaceA, deviceB, ifaceB).
		WithDevices(deviceA, deviceB)
}

func NewUnknownRole(device string) *FabricError {
	return newFabricError(KindUnknownRole, "could not infer role for device %s", device).WithDevices(device)
}

func NewDisconnectedDevice(device string) *FabricError {
	return newFabricError(KindDisconnectedDevice, "device %s has no neighbor edges", device).WithDevices(device)
}

// --- Classification (C5) ---

func NewUnclassifiedFragment(device, bdName, reason string) *FabricError {
	return newFabricError(KindUnclassifiedFragment, "fragment %s/%s could not be classified: %s", device, bdName, reason).
		WithDevices(device).WithDetail("bd_name", bdName).WithDetail("reason", reason)
}

// --- Consolidation (C6) ---

func NewLowConfidenceConsolidation(signature string, score float64) *FabricError {
	return newFabricError(KindLowConfidenceConsolidation, "consolidation of %s scored %.2f confidence", signature, score).
		WithDetail("signature", signature).WithDetail("score", fmt.Sprintf("%.3f", score))
}

func NewConflictingFragments(a, b string) *FabricError {
	return newFabricError(KindConflictingFragments, "fragments %s and %s conflict and cannot be merged", a, b)
}

// --- Pathing (C7) ---

func NewNoPath(destination string) *FabricError {
	return newFabricError(KindNoPath, "no feasible path to %s", destination).WithDevices(destination)
}

func NewCapacityExceeded(spine string) *FabricError {
	return newFabricError(KindCapacityExceeded, "spine %s exceeds configured service capacity", spine).WithDevices(spine)
}

// --- Intent (C8) ---

func NewIntentRejected(reason string) *FabricError {
	return newFabricError(KindIntentRejected, "intent rejected: %s", reason)
}

func NewInterfaceInUse(device, iface, service string) *FabricError {
	return newFabricError(KindInterfaceInUse, "%s/%s already bound to service %s", device, iface, service).
		WithDevices(device).WithDetail("interface", iface).WithDetail("service", service)
}

func NewVlanConflict(device, iface string, vlan int) *FabricError {
	return newFabricError(KindVlanConflict, "%s/%s has a conflicting VLAN %d binding", device, iface, vlan).
		WithDevices(device).WithDetail("interface", iface).WithDetail("vlan", fmt.Sprintf("%d", vlan))
}

// --- Deployment (C9) ---

func NewCommitCheckFailed(device string, cause error) *FabricError {
	return newFabricError(KindCommitCheckFailed, "commit-check failed on %s", device).WithDevices(device).WithCause(cause)
}

func NewCommitFailed(device string, cause error) *FabricError {
	return newFabricError(KindCommitFailed, "commit failed on %s", device).WithDevices(device).WithCause(cause)
}

func NewVerifyFailed(device, reason string) *FabricError {
	return newFabricError(KindVerifyFailed, "post-deployment verification failed on %s: %s", device, reason).WithDevices(device)
}

// NewRollbackFailed is terminal and must surface loudly (spec.md §7): callers
// should always log it at Error level regardless of any other suppression.
func NewRollbackFailed(device string, inverse []string, cause error) *FabricError {
	return newFabricError(KindRollbackFailed, "rollback failed on %s — device may be left in a partially-applied state", device).
		WithDevices(device).WithCause(cause).withInverse(inverse)
}

func (e *FabricError) withInverse(cmds []string) *FabricError {
	e.Inverse = cmds
	return e
}
