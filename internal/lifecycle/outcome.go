package lifecycle

// Outcome is the recorded result of one checklist item
type Outcome string

const (
	OutcomePending       Outcome = "pending"
	OutcomeCompliant     Outcome = "compliant"
	OutcomeNonCompliant  Outcome = "non_compliant"
	OutcomeNotApplicable Outcome = "not_applicable"
)

// Valid reports whether o is one of the four known outcomes
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomeCompliant, OutcomeNonCompliant, OutcomeNotApplicable:
		return true
	}
	return false
}

// Completed reports whether the item has been evaluated
func (o Outcome) Completed() bool {
	return o.Valid() && o != OutcomePending
}
