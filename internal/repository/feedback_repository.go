package repository

import (
	"errors"

	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFeedbackExists is returned when a finalize races a finalize that already
// wrote feedback for the same question.
var ErrFeedbackExists = errors.New("feedback already exists for this question")

// FinalizeResult reports the completion decision made inside the finalize
// transaction.
type FinalizeResult struct {
	SessionComplete bool
	FinalScore      *float64
}

type FeedbackRepository interface {
	// FinalizeAnswer commits the feedback row and, when every question in the
	// session has feedback, the final score and completed flag in the same
	// transaction. The session row is locked for the duration so two concurrent
	// final submissions serialize.
	FinalizeAnswer(sessionID string, feedback *model.Feedback) (*FinalizeResult, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) FinalizeAnswer(sessionID string, feedback *model.Feedback) (*FinalizeResult, error) {
	var result FinalizeResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var session model.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sessionID).
			First(&session).Error; err != nil {
			return err
		}

		// Re-verify under the lock; the pre-transaction check can be stale.
		var existing int64
		if err := tx.Model(&model.Feedback{}).
			Where("question_id = ?", feedback.QuestionID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrFeedbackExists
		}

		if err := tx.Create(feedback).Error; err != nil {
			return err
		}

		// Completion counts feedback rows, not answered questions: a question
		// whose evaluation failed after the answer write has no feedback yet
		// and must keep the session open until its retry succeeds.
		var evaluated int64
		if err := tx.Model(&model.Feedback{}).
			Joins("JOIN questions ON questions.id = feedbacks.question_id").
			Where("questions.session_id = ?", sessionID).
			Count(&evaluated).Error; err != nil {
			return err
		}

		if evaluated < int64(session.QuestionCount) {
			return nil
		}

		result.SessionComplete = true
		if session.IsCompleted {
			// A concurrent final submission already wrote the score; it is
			// never recomputed.
			result.FinalScore = session.FinalScore
			return nil
		}

		var mean float64
		if err := tx.Model(&model.Feedback{}).
			Select("AVG(feedbacks.score)").
			Joins("JOIN questions ON questions.id = feedbacks.question_id").
			Where("questions.session_id = ?", sessionID).
			Scan(&mean).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Session{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"final_score":  mean,
				"is_completed": true,
			}).Error; err != nil {
			return err
		}
		result.FinalScore = &mean
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
