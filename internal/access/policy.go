package access

import (
	"fmt"

	"rfid-access-backend/internal/model"
)

// CheckDirection enforces the directional rule for a gate type: Common_IN
// admits only entries, Common_Out only exits. VIP and Backstage gates are
// direction-agnostic.
func CheckDirection(gateType model.GateType, event model.EventType) error {
	if gateType == model.GateCommonIn && event == model.EventExit {
		return &PolicyViolationError{Rule: "direction", Message: "Wrong direction for this gate"}
	}
	if gateType == model.GateCommonOut && event == model.EventEntry {
		return &PolicyViolationError{Rule: "direction", Message: "Wrong direction for this gate"}
	}
	return nil
}

// CheckAudience enforces the audience rule for a gate type: VIP and Backstage
// gates admit only their matching user type. Common gates admit everyone.
func CheckAudience(gateType model.GateType, userType model.UserType) error {
	restricted := (gateType == model.GateVIP && userType != model.UserVIP) ||
		(gateType == model.GateBackstage && userType != model.UserBackstage)
	if restricted {
		return &PolicyViolationError{
			Rule:    "audience",
			Message: fmt.Sprintf("Access denied - gate restricted to %s", gateType),
		}
	}
	return nil
}
