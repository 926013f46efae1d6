package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string    `gorm:"primarykey;size:36" json:"id"`
	Email          string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	HashedPassword string    `json:"-" gorm:"size:255;not null"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	IsVerified     bool      `json:"is_verified" gorm:"not null;default:false"`
	Sessions       []Session `json:"sessions,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
