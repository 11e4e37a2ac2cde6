package model

import "time"

// User represents a registered credential holder. Status transitions happen
// only inside a decision transaction or an explicit administrative override.
type User struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	RFIDTag     string     `gorm:"column:rfid_tag;uniqueIndex;size:100;not null" json:"rfid_tag"`
	Name        string     `gorm:"size:256" json:"name"`
	NIC         string     `gorm:"column:nic;size:64" json:"nic"`
	UserType    UserType   `gorm:"size:32;not null;default:'Common'" json:"user_type"`
	Status      UserStatus `gorm:"size:32;not null;default:'IDLE'" json:"status"`
	LastSeenAt  *time.Time `json:"last_seen_at"`
	LastGateID  *int64     `json:"last_gate_id"`
	LastBoothID *int64     `json:"last_booth_id"`
	LastResult  ResultType `gorm:"size:8" json:"last_result"`
	NodeID      *int64     `json:"node_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
