package transport

import (
	"context"
	"testing"
)

func TestFakeTransportExecReturnsCannedOutput(t *testing.T) {
	ft := NewFakeTransport()
	ft.Responses["leaf-a"] = map[string]string{"show interfaces": "interface Ethernet0 admin=up\n"}

	res, err := ft.Exec(context.Background(), "leaf-a", "show interfaces")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "interface Ethernet0 admin=up\n" {
		t.Fatalf("unexpected output: %q", res.Output)
	}
}

func TestFakeTransportUnreachable(t *testing.T) {
	ft := NewFakeTransport()
	ft.Unreachable["leaf-b"] = true

	if err := ft.Dial(context.Background(), "leaf-b"); err == nil {
		t.Fatalf("expected Unreachable error")
	}
	if _, err := ft.Exec(context.Background(), "leaf-b", "show interfaces"); err == nil {
		t.Fatalf("expected Unreachable error on Exec")
	}
}

func TestFakeTransportFailOnSimulatesRemoteError(t *testing.T) {
	ft := NewFakeTransport()
	ft.FailOn["leaf-c"] = map[string]bool{"commit": true}

	if _, err := ft.Exec(context.Background(), "leaf-c", "commit"); err == nil {
		t.Fatalf("expected simulated RemoteError")
	}
}

func TestFakeTransportExecBatchStopsOnFirstFailure(t *testing.T) {
	ft := NewFakeTransport()
	ft.FailOn["leaf-d"] = map[string]bool{"bad": true}

	results, err := ft.ExecBatch(context.Background(), "leaf-d", []string{"good", "bad", "never"})
	if err == nil {
		t.Fatalf("expected error from batch")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 successful result before failure, got %d", len(results))
	}
}

func TestFakeTransportHistoryRecordsCalls(t *testing.T) {
	ft := NewFakeTransport()
	ft.Exec(context.Background(), "leaf-e", "one")
	ft.Exec(context.Background(), "leaf-e", "two")

	hist := ft.History()
	if len(hist) != 2 || hist[0].Command != "one" || hist[1].Command != "two" {
		t.Fatalf("unexpected history: %+v", hist)
	}
}
