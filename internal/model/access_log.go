package model

import "time"

// AccessLog is the append-only record of every scan decision. UserID is null
// for decisions that cannot be attributed to a credential (unknown tag,
// topology failure).
type AccessLog struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    *int64     `gorm:"index" json:"user_id"`
	UserType  UserType   `gorm:"size:32;not null" json:"user_type"`
	EventType EventType  `gorm:"size:16;not null" json:"event_type"`
	GateID    int64      `gorm:"index;not null" json:"gate_id"`
	BoothID   int64      `gorm:"not null" json:"booth_id"`
	Result    ResultType `gorm:"size:8;not null" json:"result"`
	Message   string     `gorm:"size:512" json:"message"`
	NodeID    int64      `gorm:"not null" json:"node_id"`
	Timestamp time.Time  `gorm:"autoCreateTime;index" json:"timestamp"`
}

// TableName keeps the table name aligned with the replicated schema.
func (AccessLog) TableName() string { return "logs" }
