package store

import (
	"context"
	"time"

	"rfid-access-backend/internal/model"
)

// SyncRow is the per-(node, table) replication status exposed to operators.
type SyncRow struct {
	NodeID            int64           `json:"node_id"`
	TableName         string          `json:"table_name"`
	LastSyncTimestamp time.Time       `json:"last_sync_timestamp"`
	SyncStatus        model.SyncState `json:"sync_status"`
	ErrorMessage      *string         `json:"error_message"`
	MinutesSinceSync  int             `json:"minutes_since_sync"`
}

func (s *gormStore) SyncStatuses(ctx context.Context, now time.Time) ([]SyncRow, error) {
	var statuses []model.SyncStatus
	err := s.db.WithContext(ctx).
		Order("node_id, table_name").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}

	rows := make([]SyncRow, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, SyncRow{
			NodeID:            st.NodeID,
			TableName:         st.Table,
			LastSyncTimestamp: st.LastSyncTimestamp,
			SyncStatus:        st.SyncStatus,
			ErrorMessage:      st.ErrorMessage,
			MinutesSinceSync:  int(now.Sub(st.LastSyncTimestamp).Minutes()),
		})
	}
	return rows, nil
}

// TriggerSync marks the metadata rows IN_PROGRESS for one node, or all nodes
// when nodeID is nil. The external sync job picks them up from there.
func (s *gormStore) TriggerSync(ctx context.Context, nodeID *int64, now time.Time) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.SyncStatus{})
	if nodeID != nil {
		q = q.Where("node_id = ?", *nodeID)
	}
	res := q.Updates(map[string]any{
		"sync_status":         model.SyncInProgress,
		"last_sync_timestamp": now,
	})
	return res.RowsAffected, res.Error
}
