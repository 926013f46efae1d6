package service

import (
	"math"
	"time"

	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/adeshpatel700-rgb/Mockmate/internal/repository"
	"github.com/rs/zerolog/log"
)

const trendDays = 7

// AnalyticsService computes dashboard rollups through store-side aggregate
// queries; it never reduces full row sets in process.
type AnalyticsService interface {
	GetAnalytics(userID string) (*dto.AnalyticsResponse, error)
	GetHistory(userID string, limit int) ([]dto.SessionHistoryItem, error)
}

type analyticsService struct {
	sessionRepo repository.SessionRepository
	now         func() time.Time
}

func NewAnalyticsService(sessionRepo repository.SessionRepository) AnalyticsService {
	return &analyticsService{sessionRepo: sessionRepo, now: time.Now}
}

func (s *analyticsService) GetAnalytics(userID string) (*dto.AnalyticsResponse, error) {
	total, err := s.sessionRepo.CountCompleted(userID)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return &dto.AnalyticsResponse{
			TotalSessions: 0,
			AverageScore:  0.0,
			BestScore:     0.0,
			WeeklyScores:  make([]float64, trendDays),
		}, nil
	}

	agg, err := s.sessionRepo.AggregateScores(userID)
	if err != nil {
		return nil, err
	}

	weekly, err := s.weeklyScores(userID)
	if err != nil {
		return nil, err
	}

	return &dto.AnalyticsResponse{
		TotalSessions: int(total),
		AverageScore:  round1(agg.Average),
		BestScore:     round1(agg.Best),
		WeeklyScores:  weekly,
	}, nil
}

// weeklyScores builds the 7-entry trend for the UTC calendar days ending
// today, oldest first. Days without completed sessions read as 0.0.
func (s *analyticsService) weeklyScores(userID string) ([]float64, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	windowStart := today.AddDate(0, 0, -(trendDays - 1))

	rows, err := s.sessionRepo.DailyAverageScores(userID, windowStart)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]float64, len(rows))
	for _, row := range rows {
		byDay[row.Day.UTC().Truncate(24*time.Hour)] = row.Average
	}

	scores := make([]float64, trendDays)
	for i := 0; i < trendDays; i++ {
		day := windowStart.AddDate(0, 0, i)
		scores[i] = round1(byDay[day])
	}
	return scores, nil
}

func (s *analyticsService) GetHistory(userID string, limit int) ([]dto.SessionHistoryItem, error) {
	sessions, err := s.sessionRepo.FindCompletedByUser(userID, limit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("GetHistory: failed to fetch sessions")
		return nil, err
	}

	items := make([]dto.SessionHistoryItem, len(sessions))
	for i, session := range sessions {
		score := 0.0
		if session.FinalScore != nil {
			score = *session.FinalScore
		}
		items[i] = dto.SessionHistoryItem{
			ID:            session.ID,
			Role:          session.Role,
			Difficulty:    session.Difficulty,
			QuestionCount: session.QuestionCount,
			Score:         score,
			CompletedAt:   session.CreatedAt,
		}
	}
	return items, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
