package lifecycle

import "fmt"

// ItemState is the minimal view of a checklist item the validator needs
type ItemState struct {
	ID      uint
	Outcome Outcome
}

// CompletionValidation is the result of the readiness-to-review check
type CompletionValidation struct {
	IsValid               bool     `json:"is_valid"`
	Errors                []string `json:"errors"`
	PendingItems          int      `json:"pending_items"`
	NonCompliantWithoutNC int      `json:"non_compliant_without_nc"`
}

// ValidateCompletion checks whether an audit may move to Review:
//  1. no checklist item may still be pending
//  2. every non-compliant item needs at least one non-conformity record
//
// covered holds the checklist-item ids that already have a non-conformity.
// Both rules are evaluated independently so a single response can report
// every problem at once. An audit with zero items passes vacuously.
func ValidateCompletion(items []ItemState, covered map[uint]bool) CompletionValidation {
	pending := 0
	uncovered := 0
	for _, item := range items {
		switch item.Outcome {
		case OutcomePending:
			pending++
		case OutcomeNonCompliant:
			if !covered[item.ID] {
				uncovered++
			}
		}
	}

	errs := make([]string, 0, 2)
	if pending > 0 {
		errs = append(errs, fmt.Sprintf(`%d checklist item(s) still have "pending" outcome. All items must be evaluated.`, pending))
	}
	if uncovered > 0 {
		errs = append(errs, fmt.Sprintf("%d non-compliant item(s) do not have associated non-conformity records.", uncovered))
	}

	return CompletionValidation{
		IsValid:               len(errs) == 0,
		Errors:                errs,
		PendingItems:          pending,
		NonCompliantWithoutNC: uncovered,
	}
}
