package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskValueOrdering(t *testing.T) {
	assert.Less(t, RiskValue(RiskLow), RiskValue(RiskMedium))
	assert.Less(t, RiskValue(RiskMedium), RiskValue(RiskElevated))
	assert.Less(t, RiskValue(RiskElevated), RiskValue(RiskHigh))
}

func TestRiskValueUnknown(t *testing.T) {
	assert.Equal(t, -1, RiskValue(RiskLevel("bogus")))
}

func TestUpgradeSaturatesAtHigh(t *testing.T) {
	assert.Equal(t, RiskMedium, RiskLow.Upgrade())
	assert.Equal(t, RiskHigh, RiskMedium.Upgrade())
	assert.Equal(t, RiskHigh, RiskHigh.Upgrade())
}

func TestDowngradeSaturatesAtLow(t *testing.T) {
	assert.Equal(t, RiskElevated, RiskHigh.Downgrade())
	assert.Equal(t, RiskMedium, RiskElevated.Downgrade())
	assert.Equal(t, RiskLow, RiskMedium.Downgrade())
	assert.Equal(t, RiskLow, RiskLow.Downgrade())
}
