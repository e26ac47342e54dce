package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fridayops/crossing/internal/model"
)

func TestResolveFromImportAlias(t *testing.T) {
	files := []FileInfo{
		{
			File: "app.py",
			Imports: []model.ImportRecord{
				{Module: "validators", Name: "check_name", Alias: "check_name"},
			},
		},
	}
	edges := []model.CallEdge{{Caller: "<module>", Callee: "check_name", File: "app.py"}}
	projectFiles := []string{"app.py", "validators.py"}

	out := Resolve(files, edges, projectFiles)
	assert.Equal(t, "validators.py:check_name", out[0].Callee)
}

func TestResolveImportAliasPrefix(t *testing.T) {
	files := []FileInfo{
		{
			File: "app.py",
			Imports: []model.ImportRecord{
				{Module: "numpy", Name: "", Alias: "np"},
			},
		},
	}
	edges := []model.CallEdge{{Caller: "<module>", Callee: "np.array", File: "app.py"}}
	projectFiles := []string{"app.py", "numpy.py"}

	out := Resolve(files, edges, projectFiles)
	assert.Equal(t, "numpy.py:array", out[0].Callee)
}

func TestResolveSameFileTopLevelIsFileQualified(t *testing.T) {
	files := []FileInfo{
		{File: "app.py", TopLevelDefs: []string{"helper"}},
	}
	edges := []model.CallEdge{{Caller: "app.py:main", Callee: "helper", File: "app.py"}}

	out := Resolve(files, edges, []string{"app.py"})
	assert.Equal(t, "app.py:helper", out[0].Callee)
}

func TestResolveUnresolvedStaysBare(t *testing.T) {
	files := []FileInfo{{File: "app.py"}}
	edges := []model.CallEdge{{Caller: "main", Callee: "mystery", File: "app.py"}}

	out := Resolve(files, edges, []string{"app.py"})
	assert.Equal(t, "mystery", out[0].Callee)
}
