package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompletionEmptyAuditPassesVacuously(t *testing.T) {
	v := ValidateCompletion(nil, nil)
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)
	assert.Zero(t, v.PendingItems)
	assert.Zero(t, v.NonCompliantWithoutNC)
}

func TestValidateCompletionPendingAloneBlocks(t *testing.T) {
	items := []ItemState{
		{ID: 1, Outcome: OutcomeCompliant},
		{ID: 2, Outcome: OutcomePending},
		{ID: 3, Outcome: OutcomePending},
	}

	v := ValidateCompletion(items, nil)
	assert.False(t, v.IsValid)
	assert.Equal(t, 2, v.PendingItems)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, `2 checklist item(s) still have "pending" outcome. All items must be evaluated.`, v.Errors[0])
}

func TestValidateCompletionCountsUncoveredNonCompliantItems(t *testing.T) {
	items := []ItemState{
		{ID: 1, Outcome: OutcomeNonCompliant},
		{ID: 2, Outcome: OutcomeNonCompliant},
		{ID: 3, Outcome: OutcomeNonCompliant},
		{ID: 4, Outcome: OutcomeCompliant},
	}
	covered := map[uint]bool{2: true}

	v := ValidateCompletion(items, covered)
	assert.False(t, v.IsValid)
	assert.Equal(t, 2, v.NonCompliantWithoutNC)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "2 non-compliant item(s) do not have associated non-conformity records.", v.Errors[0])
}

func TestValidateCompletionReportsBothRulesAtOnce(t *testing.T) {
	items := []ItemState{
		{ID: 1, Outcome: OutcomePending},
		{ID: 2, Outcome: OutcomeNonCompliant},
	}

	v := ValidateCompletion(items, nil)
	assert.False(t, v.IsValid)
	assert.Equal(t, 1, v.PendingItems)
	assert.Equal(t, 1, v.NonCompliantWithoutNC)
	assert.Len(t, v.Errors, 2)
}

// Fire-safety walkthrough: two questions, one failure, coverage added,
// then the gate opens.
func TestValidateCompletionScenario(t *testing.T) {
	items := []ItemState{
		{ID: 10, Outcome: OutcomeCompliant},     // "Fire extinguishers present?"
		{ID: 11, Outcome: OutcomeNonCompliant},  // "Exits clear?"
	}

	v := ValidateCompletion(items, nil)
	require.False(t, v.IsValid)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "1 non-compliant item(s) do not have associated non-conformity records.", v.Errors[0])

	// Record a non-conformity for item 11 and retry.
	v = ValidateCompletion(items, map[uint]bool{11: true})
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)
}

func TestValidateCompletionFullyCompliantPasses(t *testing.T) {
	items := []ItemState{
		{ID: 1, Outcome: OutcomeCompliant},
		{ID: 2, Outcome: OutcomeNotApplicable},
	}

	v := ValidateCompletion(items, nil)
	assert.True(t, v.IsValid)
}
