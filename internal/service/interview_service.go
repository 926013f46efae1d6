package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/adeshpatel700-rgb/Mockmate/internal/apperror"
	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"github.com/adeshpatel700-rgb/Mockmate/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InterviewService orchestrates the session lifecycle: creation with
// AI-generated questions, answer submission with AI evaluation, and the
// completion transition.
type InterviewService interface {
	StartSession(ctx context.Context, userID string, req dto.StartInterviewRequest) (*dto.SessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionID, questionID, userID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	GetSession(sessionID, userID string) (*dto.SessionResponse, error)
	DeleteSession(sessionID, userID string) error
}

type interviewService struct {
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	feedbackRepo repository.FeedbackRepository
	llm          GroqLLMService
}

func NewInterviewService(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	feedbackRepo repository.FeedbackRepository,
	llm GroqLLMService,
) InterviewService {
	return &interviewService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		feedbackRepo: feedbackRepo,
		llm:          llm,
	}
}

// StartSession generates the question set first and only then commits the
// session together with all its questions, so a gateway failure leaves nothing
// behind.
func (s *interviewService) StartSession(ctx context.Context, userID string, req dto.StartInterviewRequest) (*dto.SessionResponse, error) {
	questionTexts, err := s.llm.GenerateQuestions(ctx, req.Role, req.Difficulty, req.QuestionCount)
	if err != nil {
		log.Error().Err(err).Str("role", req.Role).Msg("StartSession: question generation failed")
		return nil, err
	}

	session := model.Session{
		UserID:        userID,
		Role:          req.Role,
		Difficulty:    req.Difficulty,
		QuestionCount: req.QuestionCount,
	}
	questions := make([]model.Question, len(questionTexts))
	for idx, text := range questionTexts {
		questions[idx] = model.Question{
			QuestionText: text,
			OrderIndex:   idx,
		}
	}

	if err := s.sessionRepo.CreateWithQuestions(&session, questions); err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("StartSession: failed to persist session with questions")
		return nil, err
	}
	session.Questions = questions

	return sessionToResponse(&session), nil
}

// SubmitAnswer runs the submission steps in order: ownership-checked lookups,
// the write-once answer guard, the answer write, the gateway evaluation (with
// no store transaction held open), and the atomic feedback + completion
// transition.
func (s *interviewService) SubmitAnswer(ctx context.Context, sessionID, questionID, userID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Session not found.")
		}
		return nil, err
	}

	question, err := s.questionRepo.FindByIDInSession(questionID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Question not found.")
		}
		return nil, err
	}

	if question.Answered() && question.Feedback != nil {
		return nil, apperror.NewAlreadyAnsweredError("This question has already been answered.")
	}

	// An answered question without feedback means a previous evaluation failed
	// after the answer write. The stored answer is kept (write-once) and
	// re-evaluated; the resubmitted text is not persisted.
	answerText := req.Answer
	if question.Answered() {
		answerText = *question.UserAnswer
		log.Info().Str("questionID", questionID).Msg("SubmitAnswer: retrying evaluation for stranded answer")
	} else {
		wrote, err := s.questionRepo.SetAnswer(questionID, answerText)
		if err != nil {
			log.Error().Err(err).Str("questionID", questionID).Msg("SubmitAnswer: failed to persist answer")
			return nil, err
		}
		if !wrote {
			// A concurrent submission wrote the answer between the lookup and
			// the conditional update. That stored answer wins; this request
			// continues as a retry of it.
			question, err = s.questionRepo.FindByIDInSession(questionID, sessionID)
			if err != nil {
				return nil, err
			}
			if question.Feedback != nil {
				return nil, apperror.NewAlreadyAnsweredError("This question has already been answered.")
			}
			if !question.Answered() {
				return nil, fmt.Errorf("answer write for question %s lost without a stored answer", questionID)
			}
			answerText = *question.UserAnswer
		}
	}

	evaluation, err := s.llm.EvaluateAnswer(ctx, question.QuestionText, answerText, session.Role, session.Difficulty)
	if err != nil {
		// The answer stays persisted; the caller can resubmit to retry
		// evaluation.
		log.Error().Err(err).Str("questionID", questionID).Msg("SubmitAnswer: evaluation failed")
		return nil, err
	}

	feedback := model.Feedback{
		QuestionID:      questionID,
		Score:           evaluation.Score,
		OverallFeedback: evaluation.OverallFeedback,
		Strengths:       evaluation.Strengths,
		Improvements:    evaluation.Improvements,
	}

	result, err := s.feedbackRepo.FinalizeAnswer(sessionID, &feedback)
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackExists) {
			return nil, apperror.NewAlreadyAnsweredError("This question has already been answered.")
		}
		log.Error().Err(err).Str("sessionID", sessionID).Msg("SubmitAnswer: finalize transaction failed")
		return nil, err
	}

	return &dto.SubmitAnswerResponse{
		QuestionID: questionID,
		Feedback: dto.FeedbackResponse{
			ID:              feedback.ID,
			Score:           feedback.Score,
			OverallFeedback: feedback.OverallFeedback,
			Strengths:       feedback.Strengths,
			Improvements:    feedback.Improvements,
		},
		IsLastQuestion:  result.SessionComplete,
		SessionComplete: result.SessionComplete,
	}, nil
}

func (s *interviewService) GetSession(sessionID, userID string) (*dto.SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForUserWithQuestions(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Session not found.")
		}
		return nil, err
	}
	return sessionToResponse(session), nil
}

func (s *interviewService) DeleteSession(sessionID, userID string) error {
	if _, err := s.sessionRepo.FindByIDForUser(sessionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFoundError("Session not found.")
		}
		return err
	}
	return s.sessionRepo.DeleteCascade(sessionID)
}

func sessionToResponse(session *model.Session) *dto.SessionResponse {
	var resp dto.SessionResponse
	if err := copier.Copy(&resp, session); err != nil {
		log.Error().Err(err).Str("sessionID", session.ID).Msg("Failed to copy session to DTO")
	}
	resp.Questions = make([]dto.QuestionResponse, len(session.Questions))
	for i, q := range session.Questions {
		resp.Questions[i] = dto.QuestionResponse{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OrderIndex:   q.OrderIndex,
			UserAnswer:   q.UserAnswer,
		}
	}
	return &resp
}
