package access

import "fmt"

// TopologyError reports a malformed or inconsistent gate/booth/device/node
// tuple. It is an expected business outcome: the decision transaction turns it
// into a logged FAIL, never a fault.
type TopologyError struct {
	Reason string
}

func (e *TopologyError) Error() string {
	return "Topology error: " + e.Reason
}

// UnknownCredentialError reports a scan with an unregistered RFID tag.
type UnknownCredentialError struct {
	Tag string
}

func (e *UnknownCredentialError) Error() string {
	return "Unknown RFID tag"
}

// StatusDeniedError reports a scan by a user whose status (Banned, Expired)
// forbids any access regardless of gate.
type StatusDeniedError struct {
	Status string
}

func (e *StatusDeniedError) Error() string {
	return fmt.Sprintf("Access denied - %s", e.Status)
}

// PolicyViolationError reports a scan refused by a direction or audience rule.
type PolicyViolationError struct {
	Rule    string
	Message string
}

func (e *PolicyViolationError) Error() string {
	return e.Message
}
