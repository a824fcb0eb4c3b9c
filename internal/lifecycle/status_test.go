package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), "status %q should be valid", s)
	}
	assert.False(t, Status("planned").Valid(), "legacy vocabulary is not accepted")
	assert.False(t, Status("completed").Valid())
	assert.False(t, Status("").Valid())
}

func TestOnlyClosedIsTerminal(t *testing.T) {
	assert.True(t, StatusClosed.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusReview.Terminal())
}

func TestCanStart(t *testing.T) {
	assert.True(t, CanStart(StatusScheduled))
	assert.False(t, CanStart(StatusInProgress))
	assert.False(t, CanStart(StatusReview))
	assert.False(t, CanStart(StatusClosed))
}

func TestCanCompleteFromAnyNonTerminalState(t *testing.T) {
	assert.True(t, CanComplete(StatusScheduled))
	assert.True(t, CanComplete(StatusInProgress))
	assert.True(t, CanComplete(StatusReview))
	assert.False(t, CanComplete(StatusClosed))
	assert.False(t, CanComplete(Status("archived")))
}

func TestCanCloseOnlyFromReview(t *testing.T) {
	assert.True(t, CanClose(StatusReview))
	assert.False(t, CanClose(StatusScheduled))
	assert.False(t, CanClose(StatusInProgress))
	assert.False(t, CanClose(StatusClosed))
}

func TestOutcomeValid(t *testing.T) {
	for _, o := range []Outcome{OutcomePending, OutcomeCompliant, OutcomeNonCompliant, OutcomeNotApplicable} {
		assert.True(t, o.Valid())
	}
	assert.False(t, Outcome("status").Valid())
	assert.False(t, Outcome("").Valid())
}

func TestOutcomeCompleted(t *testing.T) {
	assert.False(t, OutcomePending.Completed())
	assert.True(t, OutcomeCompliant.Completed())
	assert.True(t, OutcomeNonCompliant.Completed())
	assert.True(t, OutcomeNotApplicable.Completed())
	assert.False(t, Outcome("bogus").Completed())
}
