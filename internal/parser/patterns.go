package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	interfaceLine = regexp.MustCompile(
		`^interface (\S+) admin=(up|down)(?: parent=(\S+))?\s*$`)

	lacpLine = regexp.MustCompile(
		`^lacp (\S+) member=(\S+) state=(active|passive)\s*$`)

	bdLine = regexp.MustCompile(
		`^bd (\S+) member=(\S+) vlan=(\S+)(?: push=(\d+))?(?: pop=(\d+))?(?: swap=(\d+):(\d+))? admin=(up|down)\s*$`)

	lldpLine = regexp.MustCompile(
		`^neighbor local=(\S+) remote-device=(\S+) remote-port=(\S+)\s*$`)

	bdInstanceLine = regexp.MustCompile(
		`^bd-instance (\S+) admin=(up|down)\s*$`)
)

// inferInterfaceKind classifies an interface name the way the fabric's own
// naming convention does: a dotted suffix is always a subinterface; a name
// with no dot and no parent is either physical or a bundle, told apart by
// the bundle prefix tokens the fabric uses for LAGs.
func inferInterfaceKind(name string) string {
	if strings.Contains(name, ".") {
		return "subinterface"
	}
	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "PORTCHANNEL") || strings.HasPrefix(upper, "BUNDLE") {
		return "bundle"
	}
	return "physical"
}

func parseInterfaceLine(device string, lineNo int, line string) (InterfaceRecord, bool) {
	m := interfaceLine.FindStringSubmatch(line)
	if m == nil {
		return InterfaceRecord{}, false
	}
	rec := InterfaceRecord{
		Device:  device,
		Name:    m[1],
		Kind:    inferInterfaceKind(m[1]),
		Parent:  m[3],
		AdminUp: m[2] == "up",
		Range:   LineRange{Start: lineNo, End: lineNo},
	}
	return rec, true
}

func parseLACPLine(device string, lineNo int, line string) (LACPMemberRecord, bool) {
	m := lacpLine.FindStringSubmatch(line)
	if m == nil {
		return LACPMemberRecord{}, false
	}
	return LACPMemberRecord{
		Device:    device,
		Bundle:    m[1],
		Interface: m[2],
		Active:    m[3] == "active",
		Range:     LineRange{Start: lineNo, End: lineNo},
	}, true
}

func parseBDLine(device string, lineNo int, line string) (BDMemberRecord, bool) {
	m := bdLine.FindStringSubmatch(line)
	if m == nil {
		return BDMemberRecord{}, false
	}
	v := VLANManipulation{VLANExpr: m[3]}
	if m[4] != "" {
		v.PushOuter, _ = strconv.Atoi(m[4])
	}
	if m[5] != "" {
		v.PopCount, _ = strconv.Atoi(m[5])
	}
	if m[6] != "" && m[7] != "" {
		v.SwapFrom, _ = strconv.Atoi(m[6])
		v.SwapTo, _ = strconv.Atoi(m[7])
	}
	return BDMemberRecord{
		Device:    device,
		BDName:    m[1],
		Interface: m[2],
		VLAN:      v,
		AdminUp:   m[8] == "up",
		Range:     LineRange{Start: lineNo, End: lineNo},
	}, true
}

func parseBDInstanceLine(device string, lineNo int, line string) (BDInstanceRecord, bool) {
	m := bdInstanceLine.FindStringSubmatch(line)
	if m == nil {
		return BDInstanceRecord{}, false
	}
	return BDInstanceRecord{
		Device:  device,
		BDName:  m[1],
		AdminUp: m[2] == "up",
		Range:   LineRange{Start: lineNo, End: lineNo},
	}, true
}

func parseLLDPLine(device string, lineNo int, line string) (LLDPNeighborRecord, bool) {
	m := lldpLine.FindStringSubmatch(line)
	if m == nil {
		return LLDPNeighborRecord{}, false
	}
	return LLDPNeighborRecord{
		Device:       device,
		LocalIface:   m[1],
		RemoteDevice: m[2],
		RemoteIface:  m[3],
		Range:        LineRange{Start: lineNo, End: lineNo},
	}, true
}
