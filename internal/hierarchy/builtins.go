package hierarchy

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/builtins.yaml
var dataFS embed.FS

type rawBuiltins struct {
	Name    string                 `yaml:"name"`
	Parents map[string]interface{} `yaml:"parents"`
}

var (
	builtinOnce  sync.Once
	builtinNames map[string]bool
	builtinErr   error
)

// loadBuiltinNames reads the embedded Python builtin exception hierarchy
// table and returns the set of recognized class names, grounded on the
// teacher's embedded-YAML pattern-loading convention
// (internal/capability/patternset.go). This table is deliberately kept
// separate from the project-discovered Hierarchy used for crossing
// grouping (spec.md §9's open question keeps external/builtin parents
// unresolved for that purpose) — it exists to let report narration (see
// internal/mdreport) recognize well-known builtin exception types.
func loadBuiltinNames() (map[string]bool, error) {
	builtinOnce.Do(func() {
		data, err := dataFS.ReadFile("data/builtins.yaml")
		if err != nil {
			builtinErr = fmt.Errorf("load builtin exception hierarchy: %w", err)
			return
		}
		var raw rawBuiltins
		if err := yaml.Unmarshal(data, &raw); err != nil {
			builtinErr = fmt.Errorf("parse builtin exception hierarchy: %w", err)
			return
		}
		names := make(map[string]bool, len(raw.Parents))
		for child, parent := range raw.Parents {
			names[child] = true
			switch p := parent.(type) {
			case string:
				names[p] = true
			case []interface{}:
				for _, v := range p {
					if s, ok := v.(string); ok {
						names[s] = true
					}
				}
			}
		}
		builtinNames = names
	})
	return builtinNames, builtinErr
}

// IsBuiltinException reports whether name is a recognized Python builtin
// exception or warning class.
func IsBuiltinException(name string) bool {
	names, err := loadBuiltinNames()
	if err != nil {
		return false
	}
	return names[name]
}
