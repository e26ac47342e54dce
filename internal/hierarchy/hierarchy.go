// Package hierarchy answers transitive family-membership queries over the
// exception-class parent bindings discovered within a project. Only direct
// parents are stored; ancestor chains are walked per query. Per spec, only parent bindings
// observed as class definitions in the scanned project are resolved —
// inheritance from a builtin or external-package exception is recorded as
// a string with no further resolution (spec.md §9's open question).
package hierarchy

import "github.com/fridayops/crossing/internal/model"

// Edge is a child -> direct-parent exception class-name binding.
type Edge struct {
	Child  string
	Parent string
}

// Hierarchy is the closed exception-class tree for one scan, built purely
// from project-discovered ExceptionParent edges.
type Hierarchy struct {
	parent map[string]string // child -> direct parent
}

// Build constructs a Hierarchy from the per-file ExceptionParent edges
// discovered by the Walker. Builtin Python exception relationships (e.g.
// ValueError -> Exception -> BaseException) are deliberately not modeled
// here: the project's own class hierarchy is the only thing grouped, so a
// raise of a bare builtin type is its own family root, and project-defined
// subclasses of it join that family.
func Build(discovered []model.ExceptionParent) *Hierarchy {
	h := &Hierarchy{parent: make(map[string]string)}
	for _, e := range discovered {
		h.parent[e.Child] = e.Parent
	}
	return h
}

// Ancestors returns every class name reachable by following parent links
// from name, in order from nearest to furthest. Does not include name
// itself. Terminates on a missing or cyclic parent link.
func (h *Hierarchy) Ancestors(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	cur := name
	for {
		parent, ok := h.parent[cur]
		if !ok || parent == "" || seen[parent] {
			break
		}
		out = append(out, parent)
		seen[parent] = true
		cur = parent
	}
	return out
}

// IsAncestor reports whether a is an ancestor of b (a == b is false).
func (h *Hierarchy) IsAncestor(a, b string) bool {
	if a == b {
		return false
	}
	for _, anc := range h.Ancestors(b) {
		if anc == a {
			return true
		}
	}
	return false
}

// Descendants returns every class name whose ancestor chain includes root.
func (h *Hierarchy) Descendants(root string) []string {
	var out []string
	for child := range h.allNames() {
		if child == root {
			continue
		}
		if h.IsAncestor(root, child) {
			out = append(out, child)
		}
	}
	return out
}

func (h *Hierarchy) allNames() map[string]bool {
	names := make(map[string]bool)
	for child, parent := range h.parent {
		names[child] = true
		if parent != "" {
			names[parent] = true
		}
	}
	return names
}

// Root returns the most-general known ancestor of name within the
// project's discovered hierarchy (the top of its chain), or name itself
// if it has no recorded project parent.
func (h *Hierarchy) Root(name string) string {
	anc := h.Ancestors(name)
	if len(anc) == 0 {
		return name
	}
	return anc[len(anc)-1]
}

// Matches reports whether a raise of type R is caught by a handler for
// type H: R == H or R is a descendant of H.
func (h *Hierarchy) Matches(handlerType, raiseType string) bool {
	if handlerType == raiseType {
		return true
	}
	return h.IsAncestor(handlerType, raiseType)
}
