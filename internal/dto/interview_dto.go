package dto

import "time"

type StartInterviewRequest struct {
	Role          string `json:"role" binding:"required,min=2,max=100"`
	Difficulty    string `json:"difficulty" binding:"required,oneof=Easy Intermediate Hard"`
	QuestionCount int    `json:"question_count" binding:"required,min=3,max=10"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required,min=1,max=5000"`
}

type QuestionResponse struct {
	ID           string  `json:"id"`
	QuestionText string  `json:"question_text"`
	OrderIndex   int     `json:"order_index"`
	UserAnswer   *string `json:"user_answer,omitempty"`
}

type SessionResponse struct {
	ID            string             `json:"id"`
	Role          string             `json:"role"`
	Difficulty    string             `json:"difficulty"`
	QuestionCount int                `json:"question_count"`
	FinalScore    *float64           `json:"final_score,omitempty"`
	IsCompleted   bool               `json:"is_completed"`
	CreatedAt     time.Time          `json:"created_at"`
	Questions     []QuestionResponse `json:"questions"`
}

type FeedbackResponse struct {
	ID              string   `json:"id"`
	Score           int      `json:"score"`
	OverallFeedback string   `json:"overall_feedback"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
}

type SubmitAnswerResponse struct {
	QuestionID      string           `json:"question_id"`
	Feedback        FeedbackResponse `json:"feedback"`
	IsLastQuestion  bool             `json:"is_last_question"`
	SessionComplete bool             `json:"session_complete"`
}

type AnalyticsResponse struct {
	TotalSessions int       `json:"total_sessions"`
	AverageScore  float64   `json:"average_score"`
	BestScore     float64   `json:"best_score"`
	WeeklyScores  []float64 `json:"weekly_scores"` // 7 entries, oldest day first
}

type SessionHistoryItem struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Difficulty    string    `json:"difficulty"`
	QuestionCount int       `json:"question_count"`
	Score         float64   `json:"score"`
	CompletedAt   time.Time `json:"completed_at"`
}
