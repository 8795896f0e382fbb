package parser

import "strings"

// Parse tokenizes raw line-oriented output for one device and one command
// kind. Blank lines and lines starting with "!" or "#" are skipped; any
// other line that matches no pattern becomes an Anomaly rather than being
// dropped, and a record that conflicts with one
// already accepted for the same key is rejected in favor of the first seen,
// also as an Anomaly (spec.md §4.2).
func Parse(kind CommandKind, device string, raw string) *Result {
	res := &Result{}

	seenInterfaces := make(map[string]InterfaceRecord)
	seenBD := make(map[string]BDMemberRecord)
	seenLACP := make(map[string]LACPMemberRecord)
	seenLLDP := make(map[string]LLDPNeighborRecord)
	seenBDInstance := make(map[string]BDInstanceRecord)

	lines := strings.Split(raw, "\n")
	for idx, line := range lines {
		lineNo := idx + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "!") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch kind {
		case KindInterfaces:
			rec, ok := parseInterfaceLine(device, lineNo, trimmed)
			if !ok {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "no pattern matched"})
				continue
			}
			if prior, dup := seenInterfaces[rec.Name]; dup && prior != rec {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "conflicting redefinition of interface " + rec.Name + ", first wins"})
				continue
			}
			if _, dup := seenInterfaces[rec.Name]; !dup {
				seenInterfaces[rec.Name] = rec
				res.Interfaces = append(res.Interfaces, rec)
			}
		case KindLACP:
			rec, ok := parseLACPLine(device, lineNo, trimmed)
			if !ok {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "no pattern matched"})
				continue
			}
			if prior, dup := seenLACP[rec.Interface]; dup && prior != rec {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "interface " + rec.Interface + " claimed by multiple bundles, first wins"})
				continue
			}
			if _, dup := seenLACP[rec.Interface]; !dup {
				seenLACP[rec.Interface] = rec
				res.LACPMembers = append(res.LACPMembers, rec)
			}
		case KindBridgeDomain:
			rec, ok := parseBDLine(device, lineNo, trimmed)
			if !ok {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "no pattern matched"})
				continue
			}
			key := rec.BDName + "/" + rec.Interface
			if prior, dup := seenBD[key]; dup && prior != rec {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "conflicting redefinition of " + key + ", first wins"})
				continue
			}
			if _, dup := seenBD[key]; !dup {
				seenBD[key] = rec
				res.BDMembers = append(res.BDMembers, rec)
			}
		case KindLLDPNeighbors:
			rec, ok := parseLLDPLine(device, lineNo, trimmed)
			if !ok {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "no pattern matched"})
				continue
			}
			if prior, dup := seenLLDP[rec.LocalIface]; dup && prior != rec {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "conflicting neighbor claim on " + rec.LocalIface + ", first wins"})
				continue
			}
			if _, dup := seenLLDP[rec.LocalIface]; !dup {
				seenLLDP[rec.LocalIface] = rec
				res.LLDPNeighbors = append(res.LLDPNeighbors, rec)
			}
		case KindBDInstances:
			rec, ok := parseBDInstanceLine(device, lineNo, trimmed)
			if !ok {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "no pattern matched"})
				continue
			}
			if prior, dup := seenBDInstance[rec.BDName]; dup && prior != rec {
				res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "conflicting redefinition of bd-instance " + rec.BDName + ", first wins"})
				continue
			}
			if _, dup := seenBDInstance[rec.BDName]; !dup {
				seenBDInstance[rec.BDName] = rec
				res.BDInstances = append(res.BDInstances, rec)
			}
		default:
			res.Anomalies = append(res.Anomalies, Anomaly{Device: device, Kind: kind, Line: lineNo, Text: trimmed, Reason: "unknown command kind"})
		}
	}
	return res
}
