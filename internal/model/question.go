package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	SessionID    string    `json:"session_id" gorm:"size:36;not null;index"`
	QuestionText string    `json:"question_text" gorm:"type:text;not null"`
	UserAnswer   *string   `json:"user_answer,omitempty" gorm:"type:text"` // nil until answered, written exactly once
	OrderIndex   int       `json:"order_index" gorm:"not null"`
	Feedback     *Feedback `json:"feedback,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Answered reports whether the write-once answer has been set.
func (q *Question) Answered() bool {
	return q.UserAnswer != nil
}
