package models

import "time"

// BlacklistedToken ログアウト済みトークンの jti を有効期限まで保持する
type BlacklistedToken struct {
	ID        uint   `gorm:"primaryKey"`
	TokenID   string `gorm:"size:36;not null;uniqueIndex"`
	ExpiresAt int64  `gorm:"not null;index"`
	CreatedAt time.Time
}
