package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridayops/crossing/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanFourRaisesOneHandlerIsHigh(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", `
def f1():
    raise ValueError("a")

def f2():
    raise ValueError("b")

def f3():
    raise ValueError("c")

def f4():
    raise ValueError("d")

def handle():
    try:
        f1()
    except ValueError as e:
        return None
`)

	out, err := Scan(dir, Options{ToolVersion: "test"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.FilesScanned)
	assert.Equal(t, 0, out.Summary.ParseErrors)
	require.Len(t, out.Crossings, 1)
	assert.Equal(t, model.RiskHigh, out.Crossings[0].RiskLevel)
}

func TestScanSkipsHiddenDirectoriesAndNonPython(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "visible.py", "x = 1\n")
	writeFile(t, dir, "notes.txt", "not python\n")
	writeFile(t, dir, ".hidden/skip.py", "raise ValueError()\n")

	out, err := Scan(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.FilesScanned)
}

func TestScanScansEveryValidFileWithoutParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.py", `
def f():
    raise KeyError("x")
`)
	// An empty file still parses to an empty tree under tree-sitter, so we
	// cannot force a ParseError without a corrupt encoding; instead verify
	// that a second valid file is still fully scanned alongside the first.
	writeFile(t, dir, "also_good.py", `
def g():
    raise KeyError("y")
`)

	out, err := Scan(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Summary.FilesScanned)
	assert.Equal(t, 0, out.Summary.ParseErrors)
	assert.Equal(t, 2, out.Summary.TotalRaises)
}

func TestScanMinRiskFiltersCrossings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", `
def f1():
    raise KeyError("a")

def f2():
    raise KeyError("b")
`)

	full, err := Scan(dir, Options{})
	require.NoError(t, err)
	require.Len(t, full.Crossings, 1)
	assert.Equal(t, model.RiskLow, full.Crossings[0].RiskLevel)

	filtered, err := Scan(dir, Options{MinRisk: model.RiskMedium})
	require.NoError(t, err)
	assert.Empty(t, filtered.Crossings)
}

func TestScanCrossFileCallGraphAnnotatesPolymorphicCrossing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "validators.py", `
def check_name(name):
    if not name:
        raise ValueError("name required")

def check_age(age):
    if age < 0:
        raise ValueError("age must be non-negative")
`)
	writeFile(t, dir, "app.py", `
from validators import check_name, check_age

def handle(name, age):
    try:
        check_name(name)
        check_age(age)
    except ValueError as e:
        return None
`)

	out, err := Scan(dir, Options{})
	require.NoError(t, err)
	require.Len(t, out.Crossings, 1)
	c := out.Crossings[0]
	assert.Equal(t, "ValueError", c.ExceptionType)
	assert.True(t, c.IsPolymorphic)
	require.Len(t, c.RaiseSites, 2)
	require.Len(t, c.HandlerSites, 1)
	assert.Contains(t, c.Description, "Call graph")
}

func TestScanSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "single.py", `
def f():
    raise ValueError("x")
`)

	out, err := Scan(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.FilesScanned)
}

func TestScanNonexistentRootErrors(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	assert.Error(t, err)
}

func TestCheckToolVersion(t *testing.T) {
	ok, err := CheckToolVersion("v1.2.0", "v1.0.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckToolVersion("v0.9.0", "v1.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CheckToolVersion("dev", "v1.0.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckToolVersion("v1.0.0", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crossing.yaml", "version: 1\nbogus_field: true\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigValid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crossing.yaml", "version: 1\nimplicit: true\nmin_risk: medium\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Implicit)
	assert.Equal(t, "medium", cfg.MinRisk)
}
