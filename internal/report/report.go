// Package report defines the scan report shape and writes it as JSON or as
// colored text, grounded on the teacher's internal/report package (same
// split of a plain data struct plus json.go/text.go encoders).
package report

import "github.com/fridayops/crossing/internal/model"

// Summary aggregates counts across an entire scan.
type Summary struct {
	Root                     string  `json:"root"`
	FilesScanned             int     `json:"files_scanned"`
	ParseErrors              int     `json:"parse_errors"`
	TotalRaises              int     `json:"total_raises"`
	ExplicitRaises           int     `json:"explicit_raises"`
	ImplicitRaises           int     `json:"implicit_raises"`
	TotalHandlers            int     `json:"total_handlers"`
	TotalCrossings           int     `json:"total_crossings"`
	PolymorphicCrossings     int     `json:"polymorphic_crossings"`
	RiskyCrossings           int     `json:"risky_crossings"`
	TotalInformationLossBits float64 `json:"total_information_loss_bits"`
	MeanCollapseRatio        float64 `json:"mean_collapse_ratio"`
}

// ScanReport is the top-level output of a scan: the aggregate summary plus
// every crossing found, sorted deterministically by the Crossing Analyzer.
type ScanReport struct {
	ToolVersion string                   `json:"tool_version"`
	Summary     Summary                  `json:"summary"`
	Crossings   []model.SemanticCrossing `json:"crossings"`
}
