package store

import (
	"context"
	"time"

	"rfid-access-backend/internal/model"
)

// Summary is the headline user-count breakdown for the dashboard.
type Summary struct {
	TotalUsers int64 `json:"total_users"`
	InUsers    int64 `json:"in_users"`
	OutUsers   int64 `json:"out_users"`
	IdleUsers  int64 `json:"idle_users"`
}

// LogRow is one decision log joined with its topology and user context.
type LogRow struct {
	LogID      int64             `json:"log_id"`
	UserID     *int64            `json:"user_id"`
	EventType  model.EventType   `json:"event_type"`
	Result     model.ResultType  `json:"result"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	GateName   *string           `json:"gate_name"`
	BoothName  *string           `json:"booth_name"`
	DeviceCode *string           `json:"device_code"`
	UName      *string           `json:"u_name"`
	UNIC       *string           `json:"u_nic"`
	URFID      *string           `json:"u_rfid"`
	UStatus    *model.UserStatus `json:"u_status"`
}

func (s *gormStore) DashboardSummary(ctx context.Context) (Summary, error) {
	type statusCount struct {
		Status model.UserStatus
		N      int64
	}
	var rows []statusCount
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("status, COUNT(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, row := range rows {
		sum.TotalUsers += row.N
		switch row.Status {
		case model.StatusIn:
			sum.InUsers += row.N
		case model.StatusOut:
			sum.OutUsers += row.N
		case model.StatusIdle:
			sum.IdleUsers += row.N
		}
	}
	return sum, nil
}

func (s *gormStore) DashboardLogs(ctx context.Context, limit int) ([]LogRow, error) {
	var rows []LogRow
	err := s.db.WithContext(ctx).
		Table("logs l").
		Select(`l.id AS log_id, l.user_id, l.event_type, l.result, l.message, l.timestamp,
			g.name AS gate_name, b.name AS booth_name, d.device_code,
			u.name AS u_name, u.nic AS u_nic, u.rfid_tag AS u_rfid, u.status AS u_status`).
		Joins("LEFT JOIN gates g ON l.gate_id = g.id").
		Joins("LEFT JOIN booths b ON l.booth_id = b.id").
		Joins("LEFT JOIN devices d ON b.device_id = d.id").
		Joins("LEFT JOIN users u ON l.user_id = u.id").
		Order("l.timestamp DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
