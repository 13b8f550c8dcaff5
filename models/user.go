package models

import (
	"time"

	"sweetshop/constants"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email" validate:"required,email"`
	Password  string    `gorm:"not null" json:"-" validate:"required"`
	Role      string    `gorm:"size:16;not null;default:'user'" json:"role" validate:"required,oneof=user admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}
