package model

import "time"

// SyncStatus reports the replication state of one table on one node. Rows are
// written by the external sync job; this service only reads and re-triggers.
type SyncStatus struct {
	NodeID            int64     `gorm:"primaryKey" json:"node_id"`
	Table             string    `gorm:"primaryKey;size:64;column:table_name" json:"table_name"`
	LastSyncTimestamp time.Time `gorm:"not null" json:"last_sync_timestamp"`
	SyncStatus        SyncState `gorm:"size:16;not null" json:"sync_status"`
	ErrorMessage      *string   `gorm:"size:512" json:"error_message"`
}

func (SyncStatus) TableName() string { return "sync_metadata" }
