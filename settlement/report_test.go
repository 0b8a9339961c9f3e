package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/settlement"
)

func TestGenerateSettlementReport_CopiesFigures(t *testing.T) {
	p := sixYearProfile()
	p.ResignationDate = "2025-06-01"
	res := settlement.CalculateFinalSettlement(p, "2025-06-15", tenDays())

	report := settlement.GenerateSettlementReport(p, res)

	assert.Equal(t, p.EmployeeID, report.EmployeeID)
	assert.Equal(t, "Asha Rao", report.EmployeeName)
	assert.Equal(t, "Engineering", report.Department)
	assert.Equal(t, "Staff Engineer", report.Designation)
	assert.Equal(t, "2019-06-17", report.DateOfJoining)
	assert.Equal(t, "2025-06-01", report.ResignationDate)
	assert.Equal(t, "2025-06-15", report.ExitDate)
	assert.Equal(t, res.Summary, report.Summary)
	assert.Equal(t, res.Details, report.Details)
	assert.False(t, report.NeedsReview)

	require.Len(t, report.Lines, 6)
	last := report.Lines[5]
	assert.Equal(t, settlement.LineDeduction, last.Kind)
	assert.True(t, last.Amount.Equal(res.Breakdown.NoticePeriodRecovery))
	for _, line := range report.Lines[:5] {
		assert.Equal(t, settlement.LineEarning, line.Kind, line.Label)
	}
}

func TestGenerateSettlementReport_FlagsDegradedInputs(t *testing.T) {
	p := sixYearProfile()
	res := settlement.CalculateFinalSettlement(p, "2025-06-15", nil)

	report := settlement.GenerateSettlementReport(p, res)

	assert.True(t, report.NeedsReview)
	assert.Equal(t, res.Warnings, report.Warnings)
}
