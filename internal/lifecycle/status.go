// Package lifecycle holds the pure business rules of the audit workflow:
// the status state machine, the completion validator, and the derived
// statistics. Nothing here touches the database; handlers load rows and
// feed plain values in.
package lifecycle

// Status is the audit lifecycle state
type Status string

const (
	StatusScheduled  Status = "Scheduled"
	StatusInProgress Status = "In Progress"
	StatusReview     Status = "Review"
	StatusClosed     Status = "Closed"
)

// Statuses lists every valid audit status in lifecycle order
var Statuses = []Status{StatusScheduled, StatusInProgress, StatusReview, StatusClosed}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusReview, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the audit can no longer change.
// Checklist items of a terminal audit are frozen too.
func (s Status) Terminal() bool {
	return s == StatusClosed
}

// CanStart reports whether the audit may move to In Progress
func CanStart(from Status) bool {
	return from == StatusScheduled
}

// CanComplete reports whether the audit may attempt the gated move to
// Review. Any non-terminal state qualifies; the completion validator is
// the real gate.
func CanComplete(from Status) bool {
	return from.Valid() && !from.Terminal()
}

// CanClose reports whether the audit may move to Closed. Only an audit
// under Review can be closed.
func CanClose(from Status) bool {
	return from == StatusReview
}
