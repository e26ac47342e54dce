// Package resolver rewrites unresolved call-edge callees into fully
// qualified targets using a file's import records and the project's known
// file set, following the teacher's import-alias-map pattern in
// internal/adapters/go/detector.go generalized from Go to Python imports.
package resolver

import (
	"path"
	"strings"

	"github.com/fridayops/crossing/internal/model"
)

// FileInfo is the per-file input the resolver needs: its import records and
// the set of names it defines at module top level.
type FileInfo struct {
	File         string
	Imports      []model.ImportRecord
	TopLevelDefs []string
}

// Resolve returns a copy of edges with each callee rewritten (the input
// slice is never mutated) according to spec's four-step precedence:
//  1. from-import alias match -> "<resolved-file>:N"
//  2. import-alias prefix match -> "<resolved-file>:<remainder>"
//  3. same-file top-level definition -> "<file>:N", matching the file-
//     qualified node identity internal/walker assigns every caller
//  4. otherwise left unresolved; the bare name stays in the call graph as a
//     terminal stub node
func Resolve(files []FileInfo, edges []model.CallEdge, projectFiles []string) []model.CallEdge {
	byFile := make(map[string]FileInfo, len(files))
	for _, f := range files {
		byFile[f.File] = f
	}

	out := make([]model.CallEdge, len(edges))
	for i, e := range edges {
		out[i] = e
		fi, ok := byFile[e.File]
		if !ok {
			continue
		}
		out[i].Callee = resolveOne(fi, e.Callee, projectFiles)
	}
	return out
}

func resolveOne(fi FileInfo, name string, projectFiles []string) string {
	// Step 1: from M import N as alias (or from M import N, aliasless).
	for _, imp := range fi.Imports {
		if imp.Name == "" || imp.Name == "*" {
			continue
		}
		if imp.Alias == name {
			if file, ok := resolveModule(imp.Module, projectFiles); ok {
				return file + ":" + imp.Name
			}
			return name
		}
	}

	// Step 2: import M as alias / import M — prefix match on "alias.rest".
	for _, imp := range fi.Imports {
		if imp.Name != "" {
			continue
		}
		prefix := imp.Alias + "."
		if strings.HasPrefix(name, prefix) {
			remainder := strings.TrimPrefix(name, prefix)
			if file, ok := resolveModule(imp.Module, projectFiles); ok {
				return file + ":" + remainder
			}
			return name
		}
	}

	// Step 3: same-file top-level definition — qualified with the file so
	// it matches the file-qualified node identity the call graph uses for
	// every function (internal/walker prefixes callers the same way).
	for _, def := range fi.TopLevelDefs {
		if def == name {
			return fi.File + ":" + name
		}
	}

	// Step 4: unresolved terminal stub.
	return name
}

// resolveModule maps a dotted module path to a project file, matching
// "a.b.c" -> "a/b/c.py" or "a/b/c/__init__.py" within projectFiles.
func resolveModule(module string, projectFiles []string) (string, bool) {
	if module == "" {
		return "", false
	}
	rel := strings.ReplaceAll(module, ".", "/")
	candidates := []string{rel + ".py", path.Join(rel, "__init__.py")}
	for _, pf := range projectFiles {
		normalized := filepathToSlash(pf)
		for _, c := range candidates {
			if strings.HasSuffix(normalized, c) {
				return pf, true
			}
		}
	}
	return "", false
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
