package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridayops/crossing/internal/model"
)

func sampleReport() ScanReport {
	return ScanReport{
		ToolVersion: "0.1.0",
		Summary: Summary{
			Root:           "/repo",
			FilesScanned:   3,
			TotalRaises:    4,
			ExplicitRaises: 3,
			ImplicitRaises: 1,
			TotalHandlers:  1,
			TotalCrossings: 1,
			RiskyCrossings: 1,
		},
		Crossings: []model.SemanticCrossing{
			{
				ExceptionType: "ValueError",
				RaiseSites: []model.RaiseSite{
					{File: "a.py", Line: 1, ExceptionType: "ValueError", Function: "f1"},
				},
				HandlerSites: []model.HandlerSite{
					{File: "a.py", Line: 5, ExceptionType: "ValueError", Function: "f1", Body: model.BodyReturn, ReturnsValue: true},
				},
				RiskLevel:   model.RiskHigh,
				Description: "Polymorphic",
			},
		},
	}
}

func TestWriteScanJSONRoundTrips(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, WriteScanJSON(&buf, r))

	var decoded ScanReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "0.1.0", decoded.ToolVersion)
	assert.Equal(t, 1, decoded.Summary.TotalCrossings)
	require.Len(t, decoded.Crossings, 1)
	assert.Equal(t, "ValueError", decoded.Crossings[0].ExceptionType)
}

func TestWriteScanJSONUsesSnakeCaseKeys(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, WriteScanJSON(&buf, r))
	out := buf.String()
	assert.Contains(t, out, `"exception_type"`)
	assert.Contains(t, out, `"risk_level"`)
	assert.Contains(t, out, `"files_scanned"`)
}

func TestWriteScanTextIncludesSummaryAndCrossings(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	WriteScan(&buf, r)
	out := buf.String()
	assert.True(t, strings.Contains(out, "Scan Summary"))
	assert.True(t, strings.Contains(out, "ValueError"))
	assert.True(t, strings.Contains(out, "HIGH"))
}

func TestWriteCrossingsNoneFound(t *testing.T) {
	var buf bytes.Buffer
	WriteCrossings(&buf, nil)
	assert.Contains(t, buf.String(), "no crossings found")
}
