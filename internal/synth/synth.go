package synth

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/dnaas-fabric/fabricbd/internal/classify"
	"github.com/dnaas-fabric/fabricbd/internal/pathengine"
	"github.com/dnaas-fabric/fabricbd/internal/topology"
)

// Synthesizer turns a validated BuildIntent plus its computed paths into
// per-device forward/inverse command sequences (spec.md §4.8).
type Synthesizer struct{}

// NewSynthesizer returns a ready-to-use Synthesizer. It carries no state:
// every call to Synthesize is independent, matching the template-dispatch
// design the REDESIGN FLAG calls for.
func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

var trailingDigits = regexp.MustCompile(`(\d+)$`)

func canonicalSubinterface(snap *topology.Snapshot, device, phys, vid string) string {
	if iface, ok := snap.Interface(device, phys); ok && iface.Kind == topology.KindBundle {
		if n := trailingDigits.FindString(phys); n != "" {
			return "bundle-" + n + "." + vid
		}
	}
	return phys + "." + vid
}

// Synthesize runs the pre-checks from spec.md §4.8 and, if they pass,
// builds one DeviceConfigChange per device touched by intent's access
// endpoints and computed transit path.
func (s *Synthesizer) Synthesize(intent BuildIntent, snap *topology.Snapshot, paths []pathengine.Path, existing []ExistingAssignment) ([]DeviceConfigChange, error) {
	if err := preCheck(intent, snap, existing); err != nil {
		return nil, err
	}

	changes := make(map[string]*DeviceConfigChange)
	get := func(device string) *DeviceConfigChange {
		c, ok := changes[device]
		if !ok {
			role := topology.RoleUnknown
			if snap != nil {
				if d, ok := snap.Device(device); ok {
					role = d.Role
				}
			}
			c = &DeviceConfigChange{Device: device, Service: intent.ServiceName, Role: role}
			changes[device] = c
		}
		return c
	}

	emitAccess := func(ep Endpoint) {
		c := get(ep.Device)
		fwd, inv := accessCommands(intent.Template, intent.ServiceName, ep.Interface, intent.VLAN, canonicalSubinterface(snap, ep.Device, ep.Interface, primaryVID(intent.Template, intent.VLAN)))
		appendUnique(c, fwd, inv)
	}

	emitAccess(intent.Source)
	for _, dst := range intent.Destinations {
		emitAccess(dst)
	}

	for _, path := range paths {
		for _, hop := range path.Hops {
			emitTransitHop(changes, get, hop, intent.Template, intent.ServiceName, intent.VLAN)
		}
	}

	out := make([]DeviceConfigChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Device < out[j].Device })
	return out, nil
}

func emitTransitHop(changes map[string]*DeviceConfigChange, get func(string) *DeviceConfigChange, hop topology.NeighborEdge, t classify.Template, service, vlan string) {
	vid := outerOrPrimaryVID(t, vlan)
	for _, side := range []struct{ device, iface string }{{hop.DeviceA, hop.IfaceA}, {hop.DeviceB, hop.IfaceB}} {
		if d, ok := changes[side.device]; ok && d.Service == service {
			// already has an access change on this device (it's an endpoint); transit
			// membership on its uplink is still required and additive.
		}
		c := get(side.device)
		fwd := []string{"bd " + service + " member=" + side.iface + " vlan=" + vid + " admin=up"}
		inv := []string{"bd " + service + " member=" + side.iface + " vlan=" + vid + " admin=down"}
		appendUnique(c, fwd, inv)
	}
}

func appendUnique(c *DeviceConfigChange, fwd, inv []string) {
	seen := make(map[string]bool, len(c.Forward))
	for _, f := range c.Forward {
		seen[f] = true
	}
	for _, f := range fwd {
		if !seen[f] {
			c.Forward = append(c.Forward, f)
			seen[f] = true
		}
	}
	seenInv := make(map[string]bool, len(c.Inverse))
	for _, f := range c.Inverse {
		seenInv[f] = true
	}
	for _, f := range inv {
		if !seenInv[f] {
			c.Inverse = append(c.Inverse, f)
			seenInv[f] = true
		}
	}
}

// primaryVID returns the id used to name the access subinterface: the
// vlan expression as given for SINGLE_TAGGED/SINGLE_TAGGED_RANGE/LIST/
// PORT_MODE (a single tag, or the whole list/range expression), the
// inner tag for double-tagged templates, and "qinq" for QINQ_ALL (whose
// member subinterface spans the full range rather than one id).
func primaryVID(t classify.Template, vlan string) string {
	switch t {
	case classify.TemplateDoubleTaggedEdge, classify.TemplateDoubleTaggedLeaf:
		inner, _, ok := parseDoubleTag(vlan)
		if ok {
			return strconv.Itoa(inner)
		}
		return vlan
	case classify.TemplateQinQAll:
		return "qinq"
	default:
		return vlan
	}
}

func outerOrPrimaryVID(t classify.Template, vlan string) string {
	if globalTemplate(t) {
		return outerVLANOf(t, vlan)
	}
	return vlan
}

// accessCommands builds the forward/inverse command pair for one access
// endpoint, dispatched on template (spec.md §4.8, §6 "Generated CLI
// output").
func accessCommands(t classify.Template, service, phys, vlan, subiface string) (forward, inverse []string) {
	switch t {
	case classify.TemplateSingleTagged, classify.TemplateSingleTaggedSet, classify.TemplatePortMode:
		forward = []string{
			"interface " + subiface + " admin=up parent=" + phys,
			"bd " + service + " member=" + subiface + " vlan=" + vlan + " admin=up",
		}
		inverse = []string{
			"bd " + service + " member=" + subiface + " vlan=" + vlan + " admin=down",
			"interface " + subiface + " admin=down parent=" + phys,
		}
	case classify.TemplateDoubleTaggedEdge:
		inner, outer, _ := parseDoubleTag(vlan)
		innerS, outerS := strconv.Itoa(inner), strconv.Itoa(outer)
		forward = []string{
			"interface " + subiface + " admin=up parent=" + phys,
			"bd " + service + " member=" + subiface + " vlan=" + innerS + " push=" + outerS + " pop=1 admin=up",
		}
		inverse = []string{
			"bd " + service + " member=" + subiface + " vlan=" + innerS + " admin=down",
			"interface " + subiface + " admin=down parent=" + phys,
		}
	case classify.TemplateDoubleTaggedLeaf:
		inner, outer, _ := parseDoubleTag(vlan)
		innerS, outerS := strconv.Itoa(inner), strconv.Itoa(outer)
		forward = []string{
			"interface " + subiface + " admin=up parent=" + phys,
			"bd " + service + " member=" + subiface + " vlan=" + innerS + " swap=" + innerS + ":" + outerS + " admin=up",
		}
		inverse = []string{
			"bd " + service + " member=" + subiface + " vlan=" + innerS + " admin=down",
			"interface " + subiface + " admin=down parent=" + phys,
		}
	case classify.TemplateQinQAll:
		forward = []string{
			"interface " + subiface + " admin=up parent=" + phys,
			"bd " + service + " member=" + subiface + " vlan=1-4094 admin=up",
		}
		inverse = []string{
			"bd " + service + " member=" + subiface + " vlan=1-4094 admin=down",
			"interface " + subiface + " admin=down parent=" + phys,
		}
	}
	return forward, inverse
}
