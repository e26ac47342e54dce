// Package crossing implements the Crossing Analyzer: grouping raises by
// exception family, associating reachable handlers, and classifying risk —
// grounded on the teacher's composite-scoring structure
// (internal/priority/score.go) for shape, with semantics from spec.md §4.6.
package crossing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fridayops/crossing/internal/callgraph"
	"github.com/fridayops/crossing/internal/hierarchy"
	"github.com/fridayops/crossing/internal/infotheory"
	"github.com/fridayops/crossing/internal/model"
)

// Analyze groups raises and handlers into SemanticCrossings, classifies
// each, and returns them sorted deterministically by risk, then exception
// name, then first raise-site file+line.
func Analyze(raises []model.RaiseSite, handlers []model.HandlerSite, h *hierarchy.Hierarchy, g *callgraph.Graph) []model.SemanticCrossing {
	families := groupByRoot(raises, h)

	var crossings []model.SemanticCrossing
	emitted := make(map[string]bool)
	for root, members := range families {
		if emitted[root] {
			continue
		}
		emitted[root] = true

		assoc := associatedHandlers(root, handlers, h)
		assoc = filterReachable(members, assoc, g)

		c := buildCrossing(root, members, assoc)
		crossings = append(crossings, c)
	}

	// EmptyFamily: a handler references a type never raised in the project.
	for _, eh := range emptyFamilyHandlers(handlers, families, h) {
		crossings = append(crossings, model.SemanticCrossing{
			ExceptionType:     eh.ExceptionType,
			HandlerSites:      []model.HandlerSite{eh},
			RiskLevel:         model.RiskLow,
			Description:       "No raises found for this handler's exception type in the project (informational only)",
			InformationTheory: infotheory.Compute(0, []model.HandlerSite{eh}),
		})
	}

	sort.SliceStable(crossings, func(i, j int) bool {
		return lessCrossing(crossings[i], crossings[j])
	})
	return crossings
}

func lessCrossing(a, b model.SemanticCrossing) bool {
	ra, rb := model.RiskValue(a.RiskLevel), model.RiskValue(b.RiskLevel)
	if ra != rb {
		return ra > rb // higher risk first
	}
	if a.ExceptionType != b.ExceptionType {
		return a.ExceptionType < b.ExceptionType
	}
	af, al := firstRaiseKey(a)
	bf, bl := firstRaiseKey(b)
	if af != bf {
		return af < bf
	}
	return al < bl
}

func firstRaiseKey(c model.SemanticCrossing) (string, int) {
	if len(c.RaiseSites) == 0 {
		return "", 0
	}
	r := c.RaiseSites[0]
	return r.File, r.Line
}

// groupByRoot groups raise sites by the family root of their exception
// type, per the project-discovered hierarchy.
func groupByRoot(raises []model.RaiseSite, h *hierarchy.Hierarchy) map[string][]model.RaiseSite {
	out := make(map[string][]model.RaiseSite)
	for _, r := range raises {
		root := h.Root(r.ExceptionType)
		out[root] = append(out[root], r)
	}
	return out
}

// associatedHandlers finds handlers whose exception_type equals the family
// root, is an ancestor of it, or has the root as an ancestor of itself.
func associatedHandlers(root string, handlers []model.HandlerSite, h *hierarchy.Hierarchy) []model.HandlerSite {
	var out []model.HandlerSite
	for _, hs := range handlers {
		if h.Matches(hs.ExceptionType, root) || h.IsAncestor(root, hs.ExceptionType) {
			out = append(out, hs)
		}
	}
	return out
}

// filterReachable retains only handlers reachable from at least one raise
// site in the family: same function, an outer function transitively
// calling the raising function, or — when reachability can't be
// established because edges are unresolved — a handler in the same file.
func filterReachable(raises []model.RaiseSite, handlers []model.HandlerSite, g *callgraph.Graph) []model.HandlerSite {
	var out []model.HandlerSite
	for _, hs := range handlers {
		if handlerReachableFromAny(hs, raises, g) {
			out = append(out, hs)
		}
	}
	return out
}

func handlerReachableFromAny(hs model.HandlerSite, raises []model.RaiseSite, g *callgraph.Graph) bool {
	anyResolved := false
	for _, r := range raises {
		if r.Function == hs.Function && r.Class == hs.Class {
			return true
		}
		// Node identity matches what internal/resolver.Resolve emits for a
		// rewritten cross-file callee ("<file>:<function>") and what
		// internal/walker assigns every call-edge caller, so a raise in
		// one file can be reached from a handler's enclosing function in
		// another.
		caller := nodeID(r.File, r.Function)
		callee := nodeID(hs.File, hs.Function)
		if g.HasNode(caller) && g.HasNode(callee) {
			anyResolved = true
			if g.CanReach(callee, caller) {
				return true
			}
		}
	}
	if !anyResolved {
		// Conservative fallback: unresolved edges mean we retain a
		// same-file handler.
		for _, r := range raises {
			if r.File == hs.File {
				return true
			}
		}
	}
	return false
}

func nodeID(file, function string) string {
	return file + ":" + function
}

func buildCrossing(root string, raises []model.RaiseSite, handlers []model.HandlerSite) model.SemanticCrossing {
	origins := distinctOrigins(raises)
	isPolymorphic := len(origins) >= 2
	uniform := hasUniformHandler(handlers)

	risk, descParts := classify(origins, handlers, raises)

	c := model.SemanticCrossing{
		ExceptionType:     root,
		RaiseSites:        raises,
		HandlerSites:      handlers,
		IsPolymorphic:     isPolymorphic,
		HasUniformHandler: uniform,
		RiskLevel:         risk,
		Description:       strings.Join(descParts, "; "),
		InformationTheory: infotheory.Compute(len(origins), handlers),
	}
	return c
}

func distinctOrigins(raises []model.RaiseSite) []model.Origin {
	seen := make(map[model.Origin]bool)
	var out []model.Origin
	for _, r := range raises {
		o := model.Origin{Function: r.Function, Class: r.Class}
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

func hasUniformHandler(handlers []model.HandlerSite) bool {
	if len(handlers) == 0 {
		return true
	}
	first := handlerFlags(handlers[0])
	for _, h := range handlers[1:] {
		if handlerFlags(h) != first {
			return false
		}
	}
	return true
}

type flags struct{ reRaises, returnsValue, assignsDefault bool }

func handlerFlags(h model.HandlerSite) flags {
	return flags{h.ReRaises, h.ReturnsValue, h.AssignsDefault}
}

// classify applies spec.md §4.6's base classification, then the
// scope-mismatch upgrade, then the message-differentiation downgrade, in
// that order, and returns the final level plus the description fragments
// for each rule that fired.
func classify(origins []model.Origin, handlers []model.HandlerSite, raises []model.RaiseSite) (model.RiskLevel, []string) {
	var desc []string
	polymorphic := len(origins) >= 2
	if polymorphic {
		desc = append(desc, "Polymorphic")
	}

	mixed := mixesExplicitAndImplicit(raises, handlers)

	// The mixed explicit/implicit rule fires on any crossing with an
	// associated handler, independent of origin count — spec.md §4.6 says
	// "any case", not just polymorphic ones.
	var level model.RiskLevel
	switch {
	case len(handlers) == 0:
		level = model.RiskLow
	case mixed:
		level = model.RiskHigh
		desc = append(desc, "Mixed explicit and implicit raises under the same handler")
	case !polymorphic:
		level = model.RiskLow
	case len(origins) >= 4 && len(handlers) == 1 && isCollapsingBody(handlers[0].Body):
		level = model.RiskHigh
	case len(origins) >= 4 && (len(handlers) == 1 || len(handlers) == 2):
		level = model.RiskElevated
	default:
		level = model.RiskMedium
	}

	if polymorphic && len(handlers) > 0 && allHandlersScopeMismatch(handlers) {
		level = level.Upgrade()
		desc = append(desc, "Handler scope mismatch — catches only from called functions")
	}

	if level != model.RiskLow && len(handlers) >= 2 && allMessagesDistinct(raises) {
		level = level.Downgrade()
		desc = append(desc, "Downgraded: distinct messages with multiple handlers")
	}

	if g := callGraphAnnotation(raises, handlers); g != "" {
		desc = append(desc, g)
	}

	if len(desc) == 0 {
		desc = append(desc, "Single-origin, low risk")
	}

	return level, desc
}

func isCollapsingBody(b model.HandlerBody) bool {
	return b == model.BodyReturn || b == model.BodyAssign
}

func mixesExplicitAndImplicit(raises []model.RaiseSite, handlers []model.HandlerSite) bool {
	if len(handlers) == 0 {
		return false
	}
	var explicit, implicit bool
	for _, r := range raises {
		if r.Implicit {
			implicit = true
		} else {
			explicit = true
		}
	}
	return explicit && implicit
}

func allHandlersScopeMismatch(handlers []model.HandlerSite) bool {
	if len(handlers) == 0 {
		return false
	}
	for _, h := range handlers {
		if h.DirectRaisesInScope != 0 {
			return false
		}
	}
	return true
}

func allMessagesDistinct(raises []model.RaiseSite) bool {
	seen := make(map[string]bool)
	count := 0
	for _, r := range raises {
		if r.Message == "" {
			return false
		}
		if seen[r.Message] {
			return false
		}
		seen[r.Message] = true
		count++
	}
	return count == len(raises) && count > 0
}

func callGraphAnnotation(raises []model.RaiseSite, handlers []model.HandlerSite) string {
	if len(handlers) == 0 || len(raises) == 0 {
		return ""
	}
	return fmt.Sprintf("Call graph: %d raise site(s), %d handler(s) associated", len(raises), len(handlers))
}

// emptyFamilyHandlers returns handlers whose exception type was never
// raised anywhere in the project (spec.md §7's EmptyFamily case).
func emptyFamilyHandlers(handlers []model.HandlerSite, families map[string][]model.RaiseSite, h *hierarchy.Hierarchy) []model.HandlerSite {
	raisedRoots := make(map[string]bool, len(families))
	for root := range families {
		raisedRoots[root] = true
	}
	var out []model.HandlerSite
	for _, hs := range handlers {
		root := h.Root(hs.ExceptionType)
		if !raisedRoots[root] {
			out = append(out, hs)
		}
	}
	return out
}
