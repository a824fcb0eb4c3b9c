package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompliancePercentage(t *testing.T) {
	// 2 compliant + 1 not_applicable out of 4 -> round(75) = 75
	assert.Equal(t, 75, CompliancePercentage(2, 1, 4))
	assert.Equal(t, 0, CompliancePercentage(0, 0, 0))
	assert.Equal(t, 100, CompliancePercentage(3, 0, 3))
	// round(1/3*100) = 33
	assert.Equal(t, 33, CompliancePercentage(1, 0, 3))
	// round(2/3*100) = 67
	assert.Equal(t, 67, CompliancePercentage(2, 0, 3))
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 0, ProgressPercentage(0, 0))
	assert.Equal(t, 50, ProgressPercentage(2, 4))
	assert.Equal(t, 100, ProgressPercentage(4, 4))
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		OutcomeCompliant, OutcomeCompliant,
		OutcomeNotApplicable,
		OutcomeNonCompliant,
	}
	ncs := []NCStatus{NCStatusOpen, NCStatusClosed}
	actions := []ActionStatus{ActionStatusCompleted, ActionStatusPending, ActionStatusInProgress}

	s := Summarize(outcomes, ncs, actions)

	assert.Equal(t, 4, s.TotalItems)
	assert.Equal(t, 2, s.Compliant)
	assert.Equal(t, 1, s.NonCompliant)
	assert.Equal(t, 1, s.NotApplicable)
	assert.Equal(t, 0, s.Pending)
	assert.Equal(t, 75, s.CompliancePercentage)
	assert.Equal(t, 100, s.ProgressPercentage)
	assert.Equal(t, 2, s.NonConformities)
	assert.Equal(t, 1, s.OpenNonConformities)
	assert.Equal(t, 1, s.CompletedActions)
	assert.Equal(t, 1, s.PendingActions)
}

func TestSummarizeEmptyAudit(t *testing.T) {
	s := Summarize(nil, nil, nil)
	assert.Equal(t, 0, s.TotalItems)
	assert.Equal(t, 0, s.CompliancePercentage)
	assert.Equal(t, 0, s.ProgressPercentage)
}

func TestSummarizeUnknownOutcomeCountsAsPending(t *testing.T) {
	s := Summarize([]Outcome{OutcomePending, Outcome("")}, nil, nil)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 0, s.ProgressPercentage)
}
