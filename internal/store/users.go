package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"gorm.io/gorm"

	"rfid-access-backend/internal/model"
)

// ImportResult summarizes a bulk CSV import. Duplicates counts rows refused by
// the unique tag constraint; OtherErrors counts rows that failed for any other
// store reason. The public API folds OtherErrors into the duplicate count for
// compatibility, but the split is kept here so operators can tell them apart.
type ImportResult struct {
	Inserted    int
	Duplicates  int
	OtherErrors int
}

// CreateUser inserts a new credential holder. Fresh users start IDLE.
func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.UserType == "" {
		u.UserType = model.UserCommon
	}
	u.Status = model.StatusIdle
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *gormStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) ListUsers(ctx context.Context, skip, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ImportUsersCSV reads rows with header rfid_tag,name,nic,user_type and
// inserts each as a fresh IDLE user. Rows with an already-registered tag are
// skipped and counted.
func (s *gormStore) ImportUsersCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("invalid CSV: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["rfid_tag"]; !ok {
		return ImportResult{}, fmt.Errorf("invalid CSV: missing rfid_tag column")
	}

	var result ImportResult
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("invalid CSV at line %d: %w", line, err)
		}

		field := func(name string) string {
			if i, ok := col[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		user := model.User{
			RFIDTag:  field("rfid_tag"),
			Name:     field("name"),
			NIC:      field("nic"),
			UserType: model.UserType(field("user_type")),
		}
		if user.RFIDTag == "" {
			result.OtherErrors++
			log.Printf("[import] line %d: empty rfid_tag, skipped", line)
			continue
		}

		if err := s.CreateUser(ctx, &user); err != nil {
			if isDuplicate(err) {
				result.Duplicates++
			} else {
				result.OtherErrors++
				log.Printf("[import] line %d: insert failed: %v", line, err)
			}
			continue
		}
		result.Inserted++
	}

	return result, nil
}

// isDuplicate recognizes unique-constraint violations across the dialects the
// service runs against.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
