package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sweetshop/dto"
	"sweetshop/infra"
	"sweetshop/models"
	"sweetshop/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := infra.OpenSQLite(dsn, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestAuthService(db *gorm.DB, tokens *TokenManager) IAuthService {
	svc := NewAuthService(
		repositories.NewAuthRepository(db),
		repositories.NewTokenRepository(db),
		tokens,
		zap.NewNop(),
	)
	svc.(*AuthService).bcryptCost = bcrypt.MinCost
	return svc
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Owner",
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, repositories.NewAuthRepository(db).CreateUser(context.Background(), user))
	return user
}

func createTestSweet(t *testing.T, svc ISweetService, ownerID, name, category string, price float64, quantity int) *models.Sweet {
	t.Helper()
	sweet, err := svc.Create(context.Background(), dto.CreateSweetInput{
		Name:     name,
		Category: category,
		Price:    &price,
		Quantity: &quantity,
	}, ownerID)
	require.NoError(t, err)
	return sweet
}

func ptr[T any](v T) *T {
	return &v
}
