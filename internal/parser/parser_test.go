package parser

import "testing"

func TestParseInterfaces(t *testing.T) {
	raw := `interface Ethernet0 admin=up
interface Ethernet0.100 admin=up parent=Ethernet0
interface PortChannel1 admin=up
garbage line that matches nothing
`
	res := Parse(KindInterfaces, "leaf1-ny", raw)
	if len(res.Interfaces) != 3 {
		t.Fatalf("expected 3 interfaces, got %d: %+v", len(res.Interfaces), res.Interfaces)
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d: %+v", len(res.Anomalies), res.Anomalies)
	}
	sub := res.Interfaces[1]
	if sub.Kind != "subinterface" || sub.Parent != "Ethernet0" {
		t.Fatalf("unexpected subinterface record: %+v", sub)
	}
}

func TestParseInterfacesConflictFirstWins(t *testing.T) {
	raw := `interface Ethernet0 admin=up
interface Ethernet0 admin=down
`
	res := Parse(KindInterfaces, "leaf1-ny", raw)
	if len(res.Interfaces) != 1 || !res.Interfaces[0].AdminUp {
		t.Fatalf("expected first record to win: %+v", res.Interfaces)
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("expected a conflict anomaly, got %+v", res.Anomalies)
	}
}

func TestParseBridgeDomain(t *testing.T) {
	raw := `bd g_user_v100 member=Ethernet0.100 vlan=100 admin=up
bd g_user_v100 member=Ethernet1.100 vlan=100 push=200 admin=up
bd qinq1 member=Ethernet5.1 vlan=1-4094 admin=up
`
	res := Parse(KindBridgeDomain, "leaf1-ny", raw)
	if len(res.BDMembers) != 3 {
		t.Fatalf("expected 3 members, got %d", len(res.BDMembers))
	}
	if res.BDMembers[1].VLAN.PushOuter != 200 {
		t.Fatalf("expected push=200, got %+v", res.BDMembers[1].VLAN)
	}
	if res.BDMembers[2].VLAN.VLANExpr != "1-4094" {
		t.Fatalf("expected range expr, got %+v", res.BDMembers[2].VLAN)
	}
}

func TestParseLACP(t *testing.T) {
	raw := `lacp PortChannel1 member=Ethernet2 state=active
lacp PortChannel1 member=Ethernet3 state=active
`
	res := Parse(KindLACP, "leaf1-ny", raw)
	if len(res.LACPMembers) != 2 {
		t.Fatalf("expected 2 members, got %d", len(res.LACPMembers))
	}
}

func TestParseLLDPNeighbors(t *testing.T) {
	raw := `neighbor local=Ethernet0 remote-device=spine1-ny remote-port=Ethernet0
not a neighbor line
`
	res := Parse(KindLLDPNeighbors, "leaf1-ny", raw)
	if len(res.LLDPNeighbors) != 1 {
		t.Fatalf("expected 1 neighbor, got %d", len(res.LLDPNeighbors))
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %+v", res.Anomalies)
	}
}
