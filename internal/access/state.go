package access

import "rfid-access-backend/internal/model"

// DetermineEvent maps the user's current status to the intended event and the
// status a granted scan would move them to. Callers must intercept Banned and
// Expired before calling; those statuses never produce a transition.
func DetermineEvent(current model.UserStatus) (model.EventType, model.UserStatus) {
	switch current {
	case model.StatusIdle, model.StatusOut:
		return model.EventEntry, model.StatusIn
	case model.StatusIn:
		return model.EventExit, model.StatusOut
	default:
		return model.EventDenied, current
	}
}
