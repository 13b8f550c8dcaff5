package models

import (
	"strings"
	"time"
)

// Sweet 在庫管理の対象となる商品
// quantity は常に 0 以上（DB の CHECK 制約と UPDATE 条件の両方で保証）
type Sweet struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name" validate:"required,max=255"`
	NameLower   string    `gorm:"size:255;index" json:"-" validate:"-"`
	Category    string    `gorm:"size:32;not null;index" json:"category" validate:"required,oneof=chocolate candy gummy lollipop hard-candy other"`
	Price       float64   `gorm:"not null" json:"price" validate:"gte=0"`
	Quantity    int       `gorm:"not null;default:0;check:chk_sweets_quantity,quantity >= 0" json:"quantity" validate:"gte=0"`
	Description string    `gorm:"size:1000" json:"description" validate:"max=1000"`
	CreatedByID string    `gorm:"size:36;not null;index" json:"createdBy" validate:"required"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"-" validate:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FoldName 名前検索用の小文字化。SQLite の LOWER は ASCII しか変換しないため Go 側で行う
func FoldName(name string) string {
	return strings.ToLower(name)
}

func (s *Sweet) SetName(name string) {
	s.Name = name
	s.NameLower = FoldName(name)
}

func (s *Sweet) Available() bool {
	return s.Quantity > 0
}
