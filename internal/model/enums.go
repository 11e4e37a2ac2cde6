package model

// GateType is the policy class of a gate, governing direction and audience rules.
type GateType string

const (
	GateCommonIn  GateType = "Common_IN"
	GateCommonOut GateType = "Common_Out"
	GateVIP       GateType = "VIP"
	GateBackstage GateType = "Backstage"
)

// UserType is the access category of a credential holder.
type UserType string

const (
	UserCommon    UserType = "Common"
	UserVIP       UserType = "VIP"
	UserBackstage UserType = "Backstage"
)

// UserStatus tracks where a credential holder is in the entry/exit cycle.
type UserStatus string

const (
	StatusIdle    UserStatus = "IDLE"
	StatusIn      UserStatus = "In"
	StatusOut     UserStatus = "Out"
	StatusExpired UserStatus = "Expired"
	StatusBanned  UserStatus = "Banned"
)

// EventType is the semantic effect of a scan decision.
type EventType string

const (
	EventEntry  EventType = "ENTRY"
	EventExit   EventType = "EXIT"
	EventDenied EventType = "DENIED"
)

// ResultType is the outcome of a scan decision.
type ResultType string

const (
	ResultPass ResultType = "PASS"
	ResultFail ResultType = "FAIL"
)

// SyncState is the replication state of a (node, table) pair.
type SyncState string

const (
	SyncSuccess    SyncState = "SUCCESS"
	SyncFailed     SyncState = "FAILED"
	SyncInProgress SyncState = "IN_PROGRESS"
)

// EventCode maps decision events to the wire codes the checkpoint firmware expects.
func EventCode(event EventType) int {
	switch event {
	case EventEntry:
		return 1
	case EventExit:
		return 2
	default:
		return 0
	}
}
