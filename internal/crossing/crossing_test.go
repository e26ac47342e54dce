package crossing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridayops/crossing/internal/callgraph"
	"github.com/fridayops/crossing/internal/hierarchy"
	"github.com/fridayops/crossing/internal/model"
)

func raiseAt(fn, file string, line int, msg string) model.RaiseSite {
	return model.RaiseSite{File: file, Line: line, ExceptionType: "ValueError", Function: fn, Message: msg}
}

func TestFourRaisesOneReturnHandlerIsHigh(t *testing.T) {
	raises := []model.RaiseSite{
		raiseAt("f1", "a.py", 1, ""),
		raiseAt("f2", "a.py", 2, ""),
		raiseAt("f3", "a.py", 3, ""),
		raiseAt("f4", "a.py", 4, ""),
	}
	handlers := []model.HandlerSite{
		{File: "a.py", ExceptionType: "ValueError", Function: "f1", Body: model.BodyReturn, ReturnsValue: true, DirectRaisesInScope: 1},
	}
	h := hierarchy.Build(nil)
	g := callgraph.New(nil)

	out := Analyze(raises, handlers, h, g)
	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, model.RiskHigh, c.RiskLevel)
	assert.Len(t, c.RaiseSites, 4)
	assert.Equal(t, 2.0, c.InformationTheory.SemanticEntropyBits)
	assert.Equal(t, 1.0, c.InformationTheory.CollapseRatio)
}

func TestTwoRaisesNoHandlersIsLow(t *testing.T) {
	raises := []model.RaiseSite{
		{File: "a.py", Line: 1, ExceptionType: "KeyError", Function: "f1"},
		{File: "a.py", Line: 2, ExceptionType: "KeyError", Function: "f2"},
	}
	h := hierarchy.Build(nil)
	g := callgraph.New(nil)

	out := Analyze(raises, nil, h, g)
	require.Len(t, out, 1)
	assert.Equal(t, model.RiskLow, out[0].RiskLevel)
	assert.Equal(t, 0.0, out[0].InformationTheory.InformationLossBits)
}

func TestSubclassAndBaseFormOneCrossing(t *testing.T) {
	raises := []model.RaiseSite{
		{File: "a.py", Line: 1, ExceptionType: "ValidationError", Function: "f1"},
		{File: "b.py", Line: 2, ExceptionType: "ValueError", Function: "f2"},
	}
	handlers := []model.HandlerSite{
		{File: "b.py", ExceptionType: "ValueError", Function: "f2", Body: model.BodyReturn, ReturnsValue: true},
	}
	h := hierarchy.Build([]model.ExceptionParent{{Child: "ValidationError", Parent: "ValueError"}})
	g := callgraph.New(nil)

	out := Analyze(raises, handlers, h, g)
	require.Len(t, out, 1)
	assert.Equal(t, "ValueError", out[0].ExceptionType)
	assert.Len(t, out[0].RaiseSites, 2)
	assert.True(t, out[0].IsPolymorphic)
}

func TestDistinctMessagesDowngrade(t *testing.T) {
	raises := []model.RaiseSite{
		raiseAt("f1", "a.py", 1, "empty"),
		raiseAt("f2", "a.py", 2, "too long"),
		raiseAt("f3", "a.py", 3, "not alpha"),
	}
	handlers := []model.HandlerSite{
		{File: "a.py", ExceptionType: "ValueError", Function: "f1", Body: model.BodyReturn, ReturnsValue: true, DirectRaisesInScope: 1},
		{File: "a.py", ExceptionType: "ValueError", Function: "f2", Body: model.BodyReturn, ReturnsValue: true, DirectRaisesInScope: 1},
	}
	h := hierarchy.Build(nil)
	g := callgraph.New(nil)

	out := Analyze(raises, handlers, h, g)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Description, "Downgraded")
}

func TestMixedExplicitImplicitIsHigh(t *testing.T) {
	raises := []model.RaiseSite{
		{File: "a.py", Line: 1, ExceptionType: "ValueError", Function: "f1", Implicit: true},
		{File: "a.py", Line: 2, ExceptionType: "ValueError", Function: "f1", Message: "bad"},
	}
	handlers := []model.HandlerSite{
		{File: "a.py", ExceptionType: "ValueError", Function: "f1", Body: model.BodyAssign, AssignsDefault: true, DirectRaisesInScope: 1},
	}
	h := hierarchy.Build(nil)
	g := callgraph.New(nil)

	out := Analyze(raises, handlers, h, g)
	require.Len(t, out, 1)
	assert.Equal(t, model.RiskHigh, out[0].RiskLevel)
	assert.Contains(t, out[0].Description, "explicit")
	assert.Contains(t, out[0].Description, "implicit")
}

func TestCrossFileCallGraphAnnotated(t *testing.T) {
	raises := []model.RaiseSite{
		{File: "validators.py", Line: 1, ExceptionType: "ValueError", Function: "check_name"},
		{File: "validators.py", Line: 2, ExceptionType: "ValueError", Function: "check_age"},
	}
	handlers := []model.HandlerSite{
		{File: "app.py", ExceptionType: "ValueError", Function: "handle", Body: model.BodyReturn, ReturnsValue: true},
	}
	// Node ids mirror what internal/resolver.Resolve and internal/walker
	// actually produce for a cross-file call: the caller is always
	// file-qualified, and a resolved callee becomes "<file>:<function>".
	g := callgraph.New([]model.CallEdge{
		{Caller: "app.py:handle", Callee: "validators.py:check_name"},
		{Caller: "app.py:handle", Callee: "validators.py:check_age"},
	})
	h := hierarchy.Build(nil)

	out := Analyze(raises, handlers, h, g)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsPolymorphic)
	assert.Len(t, out[0].HandlerSites, 1)
	assert.Contains(t, out[0].Description, "Call graph")
}

func TestEmptyFamilyHandlerEmittedInformationalOnly(t *testing.T) {
	handlers := []model.HandlerSite{
		{File: "a.py", ExceptionType: "NeverRaisedError", Function: "f1"},
	}
	h := hierarchy.Build(nil)
	g := callgraph.New(nil)

	out := Analyze(nil, handlers, h, g)
	require.Len(t, out, 1)
	assert.Equal(t, model.RiskLow, out[0].RiskLevel)
	assert.Empty(t, out[0].RaiseSites)
}
