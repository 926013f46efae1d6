package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyEasy         = "Easy"
	DifficultyIntermediate = "Intermediate"
	DifficultyHard         = "Hard"
)

type Session struct {
	ID            string     `gorm:"primarykey;size:36" json:"id"`
	UserID        string     `json:"user_id" gorm:"size:36;not null;index"`
	Role          string     `json:"role" gorm:"size:100;not null"`
	Difficulty    string     `json:"difficulty" gorm:"size:20;not null"` // "Easy", "Intermediate", "Hard"
	QuestionCount int        `json:"question_count" gorm:"not null"`
	FinalScore    *float64   `json:"final_score,omitempty"`
	IsCompleted   bool       `json:"is_completed" gorm:"not null;default:false"`
	Questions     []Question `json:"questions,omitempty" gorm:"foreignKey:SessionID"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
