package store

import (
	"context"

	"rfid-access-backend/internal/model"
)

func (s *gormStore) CreateAdmin(ctx context.Context, username, passwordHash string) (*model.Admin, error) {
	admin := model.Admin{Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *gormStore) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
