package scope

import (
	"fmt"

	"github.com/matt20966/owner-schedule/pkg/schedule"
)

// ScopeRequiredError signals a recurring mutation that cannot be committed
// because its breadth is not resolved yet, or the target carries no identity.
// It is always recovered locally; no remote call is made.
type ScopeRequiredError struct {
	EventID string
	Reason  string
}

func (e *ScopeRequiredError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("scope required: %s", e.Reason)
	}
	return fmt.Sprintf("scope required for event %s: %s", e.EventID, e.Reason)
}

// Resolve determines the breadth of a mutation touching the target event.
// Targets without a series are implicitly single and need no prompt; targets
// carrying a series must arrive with an explicit decision.
func Resolve(target schedule.Event, requested schedule.Scope) (schedule.Scope, error) {
	if target.ID == "" {
		return schedule.ScopeUnset, &ScopeRequiredError{Reason: "event has no id"}
	}
	if target.Series == nil {
		return schedule.ScopeSingle, nil
	}
	if requested == schedule.ScopeUnset {
		return schedule.ScopeUnset, &ScopeRequiredError{
			EventID: target.ID,
			Reason:  "mutation touches a recurring series and no scope was chosen",
		}
	}
	if !requested.Valid() {
		return schedule.ScopeUnset, &schedule.ValidationError{
			Field:  "scope",
			Reason: fmt.Sprintf("unknown value %q", requested),
		}
	}
	return requested, nil
}
