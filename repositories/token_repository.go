package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sweetshop/models"
)

// ITokenRepository ログアウト済みトークン（jti）のブラックリスト
type ITokenRepository interface {
	AddBlacklistedToken(ctx context.Context, tokenID string, expiresAt int64) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	CleanExpiredTokens(ctx context.Context) error
}

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) ITokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) AddBlacklistedToken(ctx context.Context, tokenID string, expiresAt int64) error {
	blacklistedToken := models.BlacklistedToken{
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}
	// 同じトークンで二重にログアウトしてもエラーにしない
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_id"}}, DoNothing: true}).
		Create(&blacklistedToken).Error
}

func (r *TokenRepository) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	var blacklistedToken models.BlacklistedToken
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&blacklistedToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *TokenRepository) CleanExpiredTokens(ctx context.Context) error {
	now := time.Now().Unix()
	return r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.BlacklistedToken{}).Error
}

// RedisTokenRepository 有効期限を TTL として Redis に保持する
type RedisTokenRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenRepository(client *redis.Client, prefix string) ITokenRepository {
	return &RedisTokenRepository{client: client, prefix: prefix}
}

func (r *RedisTokenRepository) AddBlacklistedToken(ctx context.Context, tokenID string, expiresAt int64) error {
	ttl := time.Until(time.Unix(expiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+tokenID, expiresAt, ttl).Err()
}

func (r *RedisTokenRepository) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CleanExpiredTokens Redis は TTL で自動的に消えるので何もしない
func (r *RedisTokenRepository) CleanExpiredTokens(context.Context) error {
	return nil
}
