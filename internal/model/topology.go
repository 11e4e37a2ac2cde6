package model

import "time"

// Gate represents a physical venue gate.
type Gate struct {
	ID        int64    `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"size:128;not null" json:"name"`
	Type      GateType `gorm:"size:32;not null" json:"type"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Booths []Booth `gorm:"foreignKey:GateID"`
}

// Booth represents a scan lane at a gate. An inactive booth rejects all scans.
type Booth struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:128;not null" json:"name"`
	GateID    int64  `gorm:"index;not null" json:"gate_id"`
	DeviceID  int64  `gorm:"index;not null" json:"device_id"`
	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Gate Gate `gorm:"constraint:OnDelete:CASCADE"`
}

// Device represents the RFID reader hardware wired to a gate. DeviceCode is
// the identifier the hardware sends on the checkpoint link.
type Device struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	DeviceCode string `gorm:"uniqueIndex;size:64;not null" json:"device_code"`
	GateID     int64  `gorm:"index;not null" json:"gate_id"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Node represents a processing node mounted at a gate.
type Node struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:128" json:"name"`
	GateID    int64  `gorm:"index;not null" json:"gate_id"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
