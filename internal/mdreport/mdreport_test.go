package mdreport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fridayops/crossing/internal/model"
	"github.com/fridayops/crossing/internal/report"
)

func TestGenerateZeroCrossingsIsCleanBill(t *testing.T) {
	sr := report.ScanReport{
		Summary: report.Summary{FilesScanned: 10, TotalRaises: 5, TotalHandlers: 2},
	}
	out := Generate(sr, Options{ProjectName: "demo"})
	assert.Contains(t, out, "zero semantic boundary crossings")
	assert.Contains(t, out, "# Crossing Audit Report: demo")
}

func TestGenerateHighRiskFindingIncludesRecommendation(t *testing.T) {
	sr := report.ScanReport{
		Summary: report.Summary{FilesScanned: 1, TotalCrossings: 1, RiskyCrossings: 1},
		Crossings: []model.SemanticCrossing{
			{
				ExceptionType: "ValueError",
				RiskLevel:     model.RiskHigh,
				RaiseSites: []model.RaiseSite{
					{File: "a.py", Line: 1, Function: "f1"},
					{File: "a.py", Line: 2, Function: "f2"},
					{File: "a.py", Line: 3, Function: "f3"},
				},
				HandlerSites: []model.HandlerSite{
					{File: "a.py", Line: 10, Function: "handle", ReturnsValue: true},
				},
				InformationTheory: model.InformationTheory{
					SemanticEntropyBits: 1.58, InformationLossBits: 1.58, CollapseRatio: 1.0,
				},
			},
		},
	}
	out := Generate(sr, Options{ProjectName: "demo", ToolVersion: "1.2.3"})
	assert.Contains(t, out, "HIGH RISK: `ValueError`")
	assert.Contains(t, out, "Narrow the handler scope")
	assert.Contains(t, out, "Crossing Semantic Scanner 1.2.3")
}

func TestGenerateBenchmarkTableExcludesSelf(t *testing.T) {
	sr := report.ScanReport{Summary: report.Summary{FilesScanned: 24}}
	out := Generate(sr, Options{ProjectName: "flask"})
	lines := strings.Split(out, "\n")
	count := 0
	for _, l := range lines {
		if strings.Contains(l, "| flask |") {
			count++
		}
	}
	assert.Equal(t, 0, count, "benchmark table should skip a row matching the project's own name")
}

func TestClassifyOverallRisk(t *testing.T) {
	assert.Equal(t, "Low", classifyOverallRisk(nil))
	assert.Equal(t, "High", classifyOverallRisk([]model.SemanticCrossing{
		{RiskLevel: model.RiskHigh}, {RiskLevel: model.RiskHigh}, {RiskLevel: model.RiskHigh},
	}))
	assert.Equal(t, "Medium-High", classifyOverallRisk([]model.SemanticCrossing{{RiskLevel: model.RiskHigh}}))
}

func TestGenerateRecommendationBuiltinTypeManyRaises(t *testing.T) {
	c := model.SemanticCrossing{
		ExceptionType: "ValueError",
		RiskLevel:     model.RiskMedium,
		RaiseSites: []model.RaiseSite{
			{Function: "f1"}, {Function: "f2"}, {Function: "f3"}, {Function: "f4"},
		},
	}
	rec := generateRecommendation(c)
	assert.Contains(t, rec, "broad built-in type")
}
