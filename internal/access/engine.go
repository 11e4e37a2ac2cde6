package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rfid-access-backend/internal/model"
)

// ScanRequest is a scan submitted by a transport adapter for a fully
// identified checkpoint.
type ScanRequest struct {
	RFIDTag  string `json:"rfid_tag" binding:"required,min=1,max=100"`
	GateID   int64  `json:"gate_id" binding:"required"`
	BoothID  int64  `json:"booth_id" binding:"required"`
	DeviceID int64  `json:"device_id" binding:"required"`
	NodeID   int64  `json:"node_id" binding:"required"`
}

// Decision is the outcome of one scan. Business denials are Decisions with
// Result FAIL, not errors.
type Decision struct {
	Result    model.ResultType `json:"result"`
	Message   string           `json:"message"`
	EventType model.EventType  `json:"event_type"`
	UserID    *int64           `json:"user_id,omitempty"`
	UserName  *string          `json:"user_name,omitempty"`
}

// Alerter receives out-of-band notice of scans denied for banned credentials.
// Implementations must not block; the engine calls it after commit.
type Alerter interface {
	BannedScan(userID int64, userName string, gateID int64)
}

// Engine executes the atomic read-decide-write transaction for every scan.
// It holds no state across calls; the store owns all persisted state.
type Engine struct {
	db     *gorm.DB
	alerts Alerter
}

// NewEngine creates a decision engine on the given database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// SetAlerter installs an optional hook for banned-scan alerts.
func (e *Engine) SetAlerter(a Alerter) {
	e.alerts = a
}

// Decide runs one scan through topology resolution, the state machine and
// policy checks, then persists the outcome. The whole unit commits or rolls
// back atomically; every committed call leaves exactly one log row. Only a
// store fault is returned as an error.
func (e *Engine) Decide(ctx context.Context, req ScanRequest) (Decision, error) {
	var dec Decision
	var banned *model.User
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, b, err := e.decide(tx, req.RFIDTag, req.GateID, req.BoothID, req.DeviceID, req.NodeID)
		if err != nil {
			return err
		}
		dec = d
		banned = b
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	e.alertBanned(banned, req.GateID)
	return dec, nil
}

// DecideByDeviceCode is the checkpoint-link entry point: the hardware sends
// only its device code, so the booth and device are resolved inside the same
// transaction as the decision itself.
func (e *Engine) DecideByDeviceCode(ctx context.Context, rfidTag, deviceCode string, gateID, nodeID int64) (Decision, error) {
	var dec Decision
	var banned *model.User
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deviceID, boothID, err := ResolveDeviceCode(tx, gateID, deviceCode)
		var topoErr *TopologyError
		if errors.As(err, &topoErr) {
			d, derr := e.deny(tx, nil, model.UserCommon, gateID, 0, nodeID, topoErr.Error())
			if derr != nil {
				return derr
			}
			dec = d
			return nil
		}
		if err != nil {
			return err
		}

		d, b, err := e.decide(tx, rfidTag, gateID, boothID, deviceID, nodeID)
		if err != nil {
			return err
		}
		dec = d
		banned = b
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	e.alertBanned(banned, gateID)
	return dec, nil
}

// decide is the transaction body. The returned *model.User is non-nil only
// when the denial was for a banned credential, so the caller can alert after
// the commit rather than inside it.
func (e *Engine) decide(tx *gorm.DB, rfidTag string, gateID, boothID, deviceID, nodeID int64) (Decision, *model.User, error) {
	gateType, err := ResolveCheckpoint(tx, gateID, boothID, deviceID, nodeID)
	var topoErr *TopologyError
	if errors.As(err, &topoErr) {
		d, derr := e.deny(tx, nil, model.UserCommon, gateID, boothID, nodeID, topoErr.Error())
		return d, nil, derr
	}
	if err != nil {
		return Decision{}, nil, err
	}

	// Serialization point: competing scans of the same credential queue on
	// this row lock, so status is never read-then-written concurrently.
	// SQLite has no row locks but serializes writers at the database level,
	// which gives the same per-credential total order.
	q := tx.Where("rfid_tag = ?", rfidTag)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			unknown := &UnknownCredentialError{Tag: rfidTag}
			d, derr := e.deny(tx, nil, model.UserCommon, gateID, boothID, nodeID, unknown.Error())
			return d, nil, derr
		}
		return Decision{}, nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if user.Status == model.StatusBanned || user.Status == model.StatusExpired {
		statusErr := &StatusDeniedError{Status: string(user.Status)}
		d, derr := e.deny(tx, &user, user.UserType, gateID, boothID, nodeID, statusErr.Error())
		if derr != nil {
			return Decision{}, nil, derr
		}
		if user.Status == model.StatusBanned {
			return d, &user, nil
		}
		return d, nil, nil
	}

	event, nextStatus := DetermineEvent(user.Status)

	if err := CheckDirection(gateType, event); err != nil {
		d, derr := e.deny(tx, &user, user.UserType, gateID, boothID, nodeID, err.Error())
		return d, nil, derr
	}
	if err := CheckAudience(gateType, user.UserType); err != nil {
		d, derr := e.deny(tx, &user, user.UserType, gateID, boothID, nodeID, err.Error())
		return d, nil, derr
	}

	now := time.Now()
	updates := map[string]any{
		"status":        nextStatus,
		"last_seen_at":  now,
		"last_gate_id":  gateID,
		"last_booth_id": boothID,
		"last_result":   model.ResultPass,
		"node_id":       nodeID,
	}
	if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return Decision{}, nil, fmt.Errorf("user update failed: %w", err)
	}

	message := fmt.Sprintf("Access granted - %s", event)
	entry := model.AccessLog{
		UserID:    &user.ID,
		UserType:  user.UserType,
		EventType: event,
		GateID:    gateID,
		BoothID:   boothID,
		Result:    model.ResultPass,
		Message:   message,
		NodeID:    nodeID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return Decision{}, nil, fmt.Errorf("log insert failed: %w", err)
	}

	return Decision{
		Result:    model.ResultPass,
		Message:   message,
		EventType: event,
		UserID:    &user.ID,
		UserName:  &user.Name,
	}, nil, nil
}

// deny records a refused scan and builds the FAIL decision. The user row is
// never touched on a denial.
func (e *Engine) deny(tx *gorm.DB, user *model.User, userType model.UserType, gateID, boothID, nodeID int64, message string) (Decision, error) {
	entry := model.AccessLog{
		UserType:  userType,
		EventType: model.EventDenied,
		GateID:    gateID,
		BoothID:   boothID,
		Result:    model.ResultFail,
		Message:   message,
		NodeID:    nodeID,
	}
	dec := Decision{
		Result:    model.ResultFail,
		Message:   message,
		EventType: model.EventDenied,
	}
	if user != nil {
		entry.UserID = &user.ID
		dec.UserID = &user.ID
		dec.UserName = &user.Name
	}
	if err := tx.Create(&entry).Error; err != nil {
		return Decision{}, fmt.Errorf("denial log insert failed: %w", err)
	}
	return dec, nil
}

// LogFault writes a best-effort denial log after a store fault escaped the
// decision transaction. It runs outside any transaction; a failure here is
// reported but never masks the original fault.
func (e *Engine) LogFault(ctx context.Context, req ScanRequest, cause error) error {
	entry := model.AccessLog{
		UserType:  model.UserCommon,
		EventType: model.EventDenied,
		GateID:    req.GateID,
		BoothID:   req.BoothID,
		Result:    model.ResultFail,
		Message:   cause.Error(),
		NodeID:    req.NodeID,
	}
	if err := e.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("fault log insert failed: %w", err)
	}
	return nil
}

func (e *Engine) alertBanned(user *model.User, gateID int64) {
	if e.alerts == nil || user == nil {
		return
	}
	e.alerts.BannedScan(user.ID, user.Name, gateID)
}
