package lifecycle

import "math"

// Summary is the aggregate view of one audit exposed next to the state
// machine. Counts are computed on read; nothing maintains them
// incrementally.
type Summary struct {
	TotalItems           int `json:"total_items"`
	Compliant            int `json:"compliant"`
	NonCompliant         int `json:"non_compliant"`
	NotApplicable        int `json:"not_applicable"`
	Pending              int `json:"pending"`
	CompliancePercentage int `json:"compliance_percentage"`
	ProgressPercentage   int `json:"progress_percentage"`
	NonConformities      int `json:"non_conformities_count"`
	OpenNonConformities  int `json:"open_non_conformities"`
	CompletedActions     int `json:"completed_actions"`
	PendingActions       int `json:"pending_actions"`
}

// Summarize aggregates item outcomes, the statuses of the audit's
// non-conformities, and the statuses of their corrective actions.
func Summarize(outcomes []Outcome, ncStatuses []NCStatus, actionStatuses []ActionStatus) Summary {
	s := Summary{TotalItems: len(outcomes)}
	for _, o := range outcomes {
		switch o {
		case OutcomeCompliant:
			s.Compliant++
		case OutcomeNonCompliant:
			s.NonCompliant++
		case OutcomeNotApplicable:
			s.NotApplicable++
		default:
			s.Pending++
		}
	}

	s.CompliancePercentage = CompliancePercentage(s.Compliant, s.NotApplicable, s.TotalItems)
	s.ProgressPercentage = ProgressPercentage(s.TotalItems-s.Pending, s.TotalItems)

	s.NonConformities = len(ncStatuses)
	for _, st := range ncStatuses {
		if st == NCStatusOpen {
			s.OpenNonConformities++
		}
	}

	for _, st := range actionStatuses {
		switch st {
		case ActionStatusCompleted:
			s.CompletedActions++
		case ActionStatusPending:
			s.PendingActions++
		}
	}

	return s
}

// CompliancePercentage treats not-applicable items as satisfied:
// round((compliant + notApplicable) / total * 100). This is the single
// convention used everywhere in the service. Returns 0 for an empty audit.
func CompliancePercentage(compliant, notApplicable, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(compliant+notApplicable) / float64(total) * 100))
}

// ProgressPercentage is the share of items that have been evaluated
func ProgressPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
