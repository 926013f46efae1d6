package repository

import (
	"time"

	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"gorm.io/gorm"
)

// ScoreAggregate is the server-side avg/max rollup over completed sessions.
type ScoreAggregate struct {
	Average float64
	Best    float64
}

// DailyScore is one day's average final_score, keyed by UTC calendar day.
type DailyScore struct {
	Day     time.Time
	Average float64
}

type SessionRepository interface {
	// CreateWithQuestions persists the session and all its questions in a
	// single transaction. Either everything commits or nothing does.
	CreateWithQuestions(session *model.Session, questions []model.Question) error

	// FindByIDForUser scopes the lookup by owner so a session belonging to
	// another user is indistinguishable from a missing one.
	FindByIDForUser(sessionID, userID string) (*model.Session, error)
	FindByIDForUserWithQuestions(sessionID, userID string) (*model.Session, error)

	// DeleteCascade removes feedback, questions and the session itself in
	// dependency order within one transaction.
	DeleteCascade(sessionID string) error

	CountCompleted(userID string) (int64, error)
	AggregateScores(userID string) (*ScoreAggregate, error)
	DailyAverageScores(userID string, since time.Time) ([]DailyScore, error)
	FindCompletedByUser(userID string, limit int) ([]model.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) CreateWithQuestions(session *model.Session, questions []model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].SessionID = session.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *sessionRepository) FindByIDForUser(sessionID, userID string) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindByIDForUserWithQuestions(sessionID, userID string) (*model.Session, error) {
	var session model.Session
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_index ASC")
		}).
		Preload("Questions.Feedback").
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteCascade(sessionID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("question_id IN (?)", tx.Model(&model.Question{}).Select("id").Where("session_id = ?", sessionID)).
			Delete(&model.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", sessionID).Delete(&model.Session{}).Error
	})
}

func (r *sessionRepository) CountCompleted(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Session{}).
		Where("user_id = ? AND is_completed = ? AND final_score IS NOT NULL", userID, true).
		Count(&count).Error
	return count, err
}

func (r *sessionRepository) AggregateScores(userID string) (*ScoreAggregate, error) {
	var agg ScoreAggregate
	err := r.db.Model(&model.Session{}).
		Select("COALESCE(AVG(final_score), 0) AS average, COALESCE(MAX(final_score), 0) AS best").
		Where("user_id = ? AND is_completed = ? AND final_score IS NOT NULL", userID, true).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *sessionRepository) DailyAverageScores(userID string, since time.Time) ([]DailyScore, error) {
	var rows []DailyScore
	err := r.db.Model(&model.Session{}).
		Select("date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, AVG(final_score) AS average").
		Where("user_id = ? AND is_completed = ? AND final_score IS NOT NULL AND created_at >= ?", userID, true, since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *sessionRepository) FindCompletedByUser(userID string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
