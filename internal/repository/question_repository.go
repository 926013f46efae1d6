package repository

import (
	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	// FindByIDInSession only matches questions inside the given session, so a
	// question id from another session reads as not found.
	FindByIDInSession(questionID, sessionID string) (*model.Question, error)

	// SetAnswer writes the answer text only when no answer is stored yet and
	// reports whether the write happened. A false return means another
	// submission already wrote the answer.
	SetAnswer(questionID, answer string) (bool, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByIDInSession(questionID, sessionID string) (*model.Question, error) {
	var question model.Question
	err := r.db.
		Preload("Feedback").
		Where("id = ? AND session_id = ?", questionID, sessionID).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) SetAnswer(questionID, answer string) (bool, error) {
	res := r.db.Model(&model.Question{}).
		Where("id = ? AND user_answer IS NULL", questionID).
		Update("user_answer", answer)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
