package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

type Feedback struct {
	ID              string     `gorm:"primarykey;size:36" json:"id"`
	QuestionID      string     `json:"question_id" gorm:"size:36;not null;uniqueIndex"`
	Score           int        `json:"score" gorm:"not null"` // 0-100
	OverallFeedback string     `json:"overall_feedback" gorm:"type:text;not null"`
	Strengths       StringList `json:"strengths" gorm:"type:jsonb"`
	Improvements    StringList `json:"improvements" gorm:"type:jsonb"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
