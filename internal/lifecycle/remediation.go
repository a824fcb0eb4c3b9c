package lifecycle

// Severity classifies a non-conformity
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// DefaultSeverity is applied when the caller does not specify one
const DefaultSeverity = SeverityMajor

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// NCStatus is the non-conformity remediation state
type NCStatus string

const (
	NCStatusOpen       NCStatus = "open"
	NCStatusInProgress NCStatus = "in_progress"
	NCStatusClosed     NCStatus = "closed"
	NCStatusOnHold     NCStatus = "on_hold"
)

// Valid reports whether s is a known non-conformity status
func (s NCStatus) Valid() bool {
	switch s {
	case NCStatusOpen, NCStatusInProgress, NCStatusClosed, NCStatusOnHold:
		return true
	}
	return false
}

// ActionStatus is the corrective-action state
type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusCompleted  ActionStatus = "completed"
	ActionStatusOverdue    ActionStatus = "overdue"
	ActionStatusCancelled  ActionStatus = "cancelled"
)

// Valid reports whether s is a known corrective-action status
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionStatusPending, ActionStatusInProgress, ActionStatusCompleted,
		ActionStatusOverdue, ActionStatusCancelled:
		return true
	}
	return false
}
