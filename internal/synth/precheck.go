package synth

import (
	"strconv"
	"strings"

	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// preCheck runs the pre-synthesis validations from spec.md §4.8 and returns
// the first violation found, or nil if the intent may proceed.
func preCheck(intent BuildIntent, snap *topology.Snapshot, existing []ExistingAssignment) error {
	endpoints := append([]Endpoint{intent.Source}, intent.Destinations...)
	for _, ep := range endpoints {
		dev, ok := snap.Device(ep.Device)
		if !ok || dev.Role != topology.RoleLeaf {
			return util.NewIntentRejected("endpoint device " + ep.Device + " is not a known leaf")
		}
		if _, ok := snap.Interface(ep.Device, ep.Interface); !ok {
			return util.NewIntentRejected("endpoint interface " + ep.Device + "/" + ep.Interface + " does not exist")
		}
		if conflict := findConflictingAssignment(existing, ep.Device, ep.Interface, intent.ServiceName); conflict != nil {
			return util.NewInterfaceInUse(ep.Device, ep.Interface, conflict.ServiceName)
		}
	}

	if err := checkVLANShape(intent.Template, intent.VLAN); err != nil {
		return err
	}

	if globalTemplate(intent.Template) {
		outer := outerVLANOf(intent.Template, intent.VLAN)
		for _, a := range existing {
			if a.OuterVLAN == "" || a.ServiceName == intent.ServiceName {
				continue
			}
			if a.OuterVLAN == outer {
				vid, _ := strconv.Atoi(outer)
				return util.NewVlanConflict(a.Device, a.Interface, vid)
			}
		}
	}
	return nil
}

func findConflictingAssignment(existing []ExistingAssignment, device, iface, service string) *ExistingAssignment {
	for i := range existing {
		a := &existing[i]
		if a.Device == device && a.Interface == iface && a.ServiceName != service {
			return a
		}
	}
	return nil
}

// checkVLANShape enforces the template's legal VLAN expression shape
// (spec.md §4.8: "SINGLE_TAGGED forbids lists; QINQ_ALL requires full
// 1-4094").
func checkVLANShape(t classify.Template, vlan string) error {
	switch t {
	case classify.TemplateSingleTagged:
		if strings.ContainsAny(vlan, ",-:") {
			return util.NewIntentRejected("SINGLE_TAGGED forbids list/range VLAN expressions, got " + vlan)
		}
		if _, err := strconv.Atoi(vlan); err != nil {
			return util.NewIntentRejected("SINGLE_TAGGED requires a single numeric vlan id, got " + vlan)
		}
	case classify.TemplateQinQAll:
		if vlan != "1-4094" {
			return util.NewIntentRejected("QINQ_ALL requires the full 1-4094 span, got " + vlan)
		}
	case classify.TemplateDoubleTaggedEdge, classify.TemplateDoubleTaggedLeaf:
		inner, outer, ok := parseDoubleTag(vlan)
		if !ok {
			return util.NewIntentRejected("double-tagged templates require an \"inner:outer\" vlan expression, got " + vlan)
		}
		if inner == outer {
			return util.NewIntentRejected("double-tagged templates require distinct inner and outer vlan ids")
		}
	}
	return nil
}

// parseDoubleTag splits a double-tagged VLAN expression "inner:outer" into
// its two numeric tags.
func parseDoubleTag(vlan string) (inner, outer int, ok bool) {
	parts := strings.SplitN(vlan, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	i, err1 := strconv.Atoi(parts[0])
	o, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return i, o, true
}

// outerVLANOf returns the fabric-wide outer tag a GLOBAL template occupies
// on uplinks: the full span for QINQ_ALL, or the explicit outer tag for
// double-tagged templates.
func outerVLANOf(t classify.Template, vlan string) string {
	if t == classify.TemplateQinQAll {
		return "1-4094"
	}
	_, outer, ok := parseDoubleTag(vlan)
	if !ok {
		return ""
	}
	return strconv.Itoa(outer)
}
