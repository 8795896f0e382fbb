// Package classify assigns exactly one BridgeDomainTemplate to a fragment
// by evaluating an ordered set of pure predicates (spec.md §4.5). Classify
// has no I/O and no shared state: its entire input is a fragment.BDFragment
// and its entire output is a Template plus a list of Violations.
package classify

// Template is the classification tag assigned to a fragment.
type Template string

const (
	TemplateDoubleTaggedEdge Template = "DOUBLE_TAGGED_EDGE_IMPOSITION"
	TemplateDoubleTaggedLeaf Template = "DOUBLE_TAGGED_LEAF_IMPOSITION"
	TemplateQinQAll          Template = "QINQ_ALL"
	TemplateSingleTagged     Template = "SINGLE_TAGGED"
	TemplateSingleTaggedSet  Template = "SINGLE_TAGGED_RANGE/LIST"
	TemplatePortMode         Template = "PORT_MODE"
	TemplateUnclassified     Template = "UNCLASSIFIED"
)

// Violation is a diagnostic produced alongside the chosen template, feeding
// the consolidator's confidence scoring (spec.md §4.5, §4.6).
type Violation struct {
	Rule   string
	Reason string
}
