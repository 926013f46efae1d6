package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adeshpatel700-rgb/Mockmate/internal/apperror"
	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"github.com/adeshpatel700-rgb/Mockmate/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the three interview repositories. The
// finalize logic mirrors the transactional repository so completion arithmetic
// can be exercised without a database.
type memStore struct {
	sessions  map[string]*model.Session
	questions map[string]*model.Question
	feedbacks map[string]*model.Feedback // keyed by question id

	createErr       error
	setAnswered     []string
	beforeSetAnswer func()
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  make(map[string]*model.Session),
		questions: make(map[string]*model.Question),
		feedbacks: make(map[string]*model.Feedback),
	}
}

func (m *memStore) CreateWithQuestions(session *model.Session, questions []model.Question) error {
	if m.createErr != nil {
		return m.createErr
	}
	session.ID = uuid.NewString()
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	for i := range questions {
		questions[i].ID = uuid.NewString()
		questions[i].SessionID = session.ID
		q := questions[i]
		m.questions[q.ID] = &q
	}
	return nil
}

func (m *memStore) FindByIDForUser(sessionID, userID string) (*model.Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s
	return &copy, nil
}

func (m *memStore) FindByIDForUserWithQuestions(sessionID, userID string) (*model.Session, error) {
	s, err := m.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	for _, q := range m.questions {
		if q.SessionID == sessionID {
			qc := *q
			if fb, ok := m.feedbacks[q.ID]; ok {
				fbc := *fb
				qc.Feedback = &fbc
			}
			s.Questions = append(s.Questions, qc)
		}
	}
	return s, nil
}

func (m *memStore) DeleteCascade(sessionID string) error {
	for id, q := range m.questions {
		if q.SessionID == sessionID {
			delete(m.feedbacks, id)
			delete(m.questions, id)
		}
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *memStore) CountCompleted(userID string) (int64, error) { return 0, nil }

func (m *memStore) AggregateScores(userID string) (*repository.ScoreAggregate, error) {
	return &repository.ScoreAggregate{}, nil
}

func (m *memStore) DailyAverageScores(userID string, since time.Time) ([]repository.DailyScore, error) {
	return nil, nil
}

func (m *memStore) FindCompletedByUser(userID string, limit int) ([]model.Session, error) {
	return nil, nil
}

func (m *memStore) FindByIDInSession(questionID, sessionID string) (*model.Question, error) {
	q, ok := m.questions[questionID]
	if !ok || q.SessionID != sessionID {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *q
	if fb, ok := m.feedbacks[questionID]; ok {
		fbc := *fb
		copy.Feedback = &fbc
	}
	return &copy, nil
}

func (m *memStore) SetAnswer(questionID, answer string) (bool, error) {
	if m.beforeSetAnswer != nil {
		m.beforeSetAnswer()
	}
	q, ok := m.questions[questionID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if q.UserAnswer != nil {
		return false, nil
	}
	q.UserAnswer = &answer
	m.setAnswered = append(m.setAnswered, questionID)
	return true, nil
}

func (m *memStore) countFeedback(sessionID string) int64 {
	var n int64
	for qid := range m.feedbacks {
		if q, ok := m.questions[qid]; ok && q.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (m *memStore) FinalizeAnswer(sessionID string, feedback *model.Feedback) (*repository.FinalizeResult, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if _, exists := m.feedbacks[feedback.QuestionID]; exists {
		return nil, repository.ErrFeedbackExists
	}
	feedback.ID = uuid.NewString()
	fb := *feedback
	m.feedbacks[feedback.QuestionID] = &fb

	// Mirrors the transactional repository: completion counts feedback rows.
	if m.countFeedback(sessionID) < int64(session.QuestionCount) {
		return &repository.FinalizeResult{}, nil
	}

	result := &repository.FinalizeResult{SessionComplete: true}
	if session.IsCompleted {
		result.FinalScore = session.FinalScore
		return result, nil
	}

	var sum, count float64
	for qid, f := range m.feedbacks {
		if q, ok := m.questions[qid]; ok && q.SessionID == sessionID {
			sum += float64(f.Score)
			count++
		}
	}
	mean := sum / count
	session.FinalScore = &mean
	session.IsCompleted = true
	result.FinalScore = &mean
	return result, nil
}

type fakeLLM struct {
	questions    []string
	questionsErr error
	evaluation   *Evaluation
	evalErr      error
	lastAnswer   string
}

func (f *fakeLLM) GenerateQuestions(ctx context.Context, role, difficulty string, count int) ([]string, error) {
	return f.questions, f.questionsErr
}

func (f *fakeLLM) EvaluateAnswer(ctx context.Context, question, answer, role, difficulty string) (*Evaluation, error) {
	f.lastAnswer = answer
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.evaluation, nil
}

func newInterviewFixture(llm *fakeLLM) (*memStore, InterviewService) {
	store := newMemStore()
	svc := NewInterviewService(store, store, store, llm)
	return store, svc
}

func startTestSession(t *testing.T, store *memStore, svc InterviewService, userID string, count int) *dto.SessionResponse {
	t.Helper()
	resp, err := svc.StartSession(context.Background(), userID, dto.StartInterviewRequest{
		Role:          "Backend Engineer",
		Difficulty:    model.DifficultyIntermediate,
		QuestionCount: count,
	})
	require.NoError(t, err)
	return resp
}

func TestStartSessionAssignsSequentialOrder(t *testing.T) {
	llm := &fakeLLM{questions: []string{"Q1", "Q2", "Q3"}}
	store, svc := newInterviewFixture(llm)

	resp := startTestSession(t, store, svc, "user-1", 3)

	require.Len(t, resp.Questions, 3)
	for i, q := range resp.Questions {
		assert.Equal(t, i, q.OrderIndex)
	}
	assert.False(t, resp.IsCompleted)
	assert.Nil(t, resp.FinalScore)
	assert.Len(t, store.sessions, 1)
	assert.Len(t, store.questions, 3)
}

func TestStartSessionGatewayFailureLeavesNothing(t *testing.T) {
	llm := &fakeLLM{questionsErr: apperror.NewUpstreamUnavailableError("down")}
	store, svc := newInterviewFixture(llm)

	_, err := svc.StartSession(context.Background(), "user-1", dto.StartInterviewRequest{
		Role:          "Backend Engineer",
		Difficulty:    model.DifficultyEasy,
		QuestionCount: 3,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorUpstreamUnavailable))
	assert.Empty(t, store.sessions)
	assert.Empty(t, store.questions)
}

func TestSubmitAnswerReturnsFeedback(t *testing.T) {
	llm := &fakeLLM{
		questions: []string{"Q1", "Q2", "Q3"},
		evaluation: &Evaluation{
			Score:           80,
			OverallFeedback: "Good.",
			Strengths:       []string{"clear"},
			Improvements:    []string{"detail"},
		},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 3)

	resp, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-1", dto.SubmitAnswerRequest{Answer: "my answer"})
	require.NoError(t, err)
	assert.Equal(t, 80, resp.Feedback.Score)
	assert.False(t, resp.SessionComplete)
	assert.False(t, resp.IsLastQuestion)
	assert.Equal(t, "my answer", llm.lastAnswer)
}

func TestSubmitAnswerRejectsSecondSubmission(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2", "Q3"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 3)
	qid := session.Questions[0].ID

	_, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "first"})
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "second"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorAlreadyAnswered))

	// The stored answer is untouched by the rejected resubmission.
	assert.Equal(t, "first", *store.questions[qid].UserAnswer)
}

func TestSubmitAnswerCompletesSessionOnLastQuestion(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	first, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-1", dto.SubmitAnswerRequest{Answer: "a1"})
	require.NoError(t, err)
	assert.False(t, first.SessionComplete)

	llm.evaluation = &Evaluation{Score: 90, OverallFeedback: "ok"}
	second, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[1].ID, "user-1", dto.SubmitAnswerRequest{Answer: "a2"})
	require.NoError(t, err)
	assert.True(t, second.SessionComplete)
	assert.True(t, second.IsLastQuestion)

	persisted := store.sessions[session.ID]
	require.NotNil(t, persisted.FinalScore)
	assert.InDelta(t, 85.0, *persisted.FinalScore, 0.001)
	assert.True(t, persisted.IsCompleted)
}

func TestSubmitAnswerEvaluationFailureKeepsAnswer(t *testing.T) {
	llm := &fakeLLM{
		questions: []string{"Q1", "Q2"},
		evalErr:   apperror.NewUpstreamUnavailableError("down"),
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)
	qid := session.Questions[0].ID

	_, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "kept"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorUpstreamUnavailable))

	require.NotNil(t, store.questions[qid].UserAnswer)
	assert.Equal(t, "kept", *store.questions[qid].UserAnswer)
	assert.NotContains(t, store.feedbacks, qid)
}

func TestSubmitAnswerRetriesStrandedAnswer(t *testing.T) {
	llm := &fakeLLM{
		questions: []string{"Q1", "Q2"},
		evalErr:   apperror.NewUpstreamUnavailableError("down"),
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)
	qid := session.Questions[0].ID

	_, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "original"})
	require.Error(t, err)

	llm.evalErr = nil
	llm.evaluation = &Evaluation{Score: 75, OverallFeedback: "ok"}

	resp, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "replacement text"})
	require.NoError(t, err)
	assert.Equal(t, 75, resp.Feedback.Score)

	// The retry re-evaluates the stored answer; the resubmitted text is ignored
	// and the answer is written exactly once.
	assert.Equal(t, "original", llm.lastAnswer)
	assert.Equal(t, "original", *store.questions[qid].UserAnswer)
	assert.Equal(t, []string{qid}, store.setAnswered)
}

func TestSessionStaysOpenUntilEveryQuestionHasFeedback(t *testing.T) {
	llm := &fakeLLM{
		questions: []string{"Q1", "Q2"},
		evalErr:   apperror.NewUpstreamUnavailableError("down"),
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	// Q1's evaluation fails after the answer write: answered, no feedback.
	_, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-1", dto.SubmitAnswerRequest{Answer: "a1"})
	require.Error(t, err)

	// Q2 succeeds. Both questions are answered, but only one is evaluated, so
	// the session must not complete and no final score may be written.
	llm.evalErr = nil
	llm.evaluation = &Evaluation{Score: 80, OverallFeedback: "ok"}
	resp, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[1].ID, "user-1", dto.SubmitAnswerRequest{Answer: "a2"})
	require.NoError(t, err)
	assert.False(t, resp.SessionComplete)
	assert.False(t, store.sessions[session.ID].IsCompleted)
	assert.Nil(t, store.sessions[session.ID].FinalScore)

	// Retrying Q1 closes the session; the final score is the mean over both
	// feedback scores, not just the ones present at the earlier submission.
	llm.evaluation = &Evaluation{Score: 40, OverallFeedback: "ok"}
	resp, err = svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-1", dto.SubmitAnswerRequest{Answer: "ignored"})
	require.NoError(t, err)
	assert.True(t, resp.SessionComplete)

	persisted := store.sessions[session.ID]
	assert.True(t, persisted.IsCompleted)
	require.NotNil(t, persisted.FinalScore)
	assert.InDelta(t, 60.0, *persisted.FinalScore, 0.001)
}

func TestSubmitAnswerConcurrentWriteKeepsFirstAnswer(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 70, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)
	qid := session.Questions[0].ID

	// Another submission lands between the lookup and the conditional answer
	// write; the conditional update then writes no rows.
	store.beforeSetAnswer = func() {
		winner := "first writer"
		store.questions[qid].UserAnswer = &winner
	}

	resp, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "second writer"})
	require.NoError(t, err)
	assert.Equal(t, 70, resp.Feedback.Score)

	// The first answer is never overwritten and is what gets evaluated.
	assert.Equal(t, "first writer", *store.questions[qid].UserAnswer)
	assert.Equal(t, "first writer", llm.lastAnswer)
	assert.Empty(t, store.setAnswered)
}

func TestSubmitAnswerConcurrentlyEvaluatedIsAlreadyAnswered(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 70, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)
	qid := session.Questions[0].ID

	// The racing submission both wrote the answer and finished evaluation
	// before this request's conditional write runs.
	store.beforeSetAnswer = func() {
		winner := "first writer"
		store.questions[qid].UserAnswer = &winner
		store.feedbacks[qid] = &model.Feedback{QuestionID: qid, Score: 55}
	}

	_, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "second writer"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorAlreadyAnswered))
	assert.Equal(t, "first writer", *store.questions[qid].UserAnswer)
}

func TestSubmitAnswerOtherUsersSessionIsNotFound(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	_, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-2", dto.SubmitAnswerRequest{Answer: "a"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorNotFound))
}

func TestSubmitAnswerUnknownQuestionIsNotFound(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	_, err := svc.SubmitAnswer(context.Background(), session.ID, uuid.NewString(), "user-1", dto.SubmitAnswerRequest{Answer: "a"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorNotFound))
}

func TestSubmitAnswerFinalizeRaceMapsToAlreadyAnswered(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)
	qid := session.Questions[0].ID

	// Feedback written out of band, simulating a concurrent submission that
	// landed between the guard check and the finalize transaction.
	answer := "racer"
	store.questions[qid].UserAnswer = &answer
	store.feedbacks[qid] = &model.Feedback{QuestionID: qid, Score: 50}

	// The service sees feedback preloaded on the question and rejects early.
	_, err := svc.SubmitAnswer(context.Background(), session.ID, qid, "user-1", dto.SubmitAnswerRequest{Answer: "a"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorAlreadyAnswered))
}

func TestGetSessionReturnsQuestionsWithAnswers(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	_, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-1", dto.SubmitAnswerRequest{Answer: "a1"})
	require.NoError(t, err)

	got, err := svc.GetSession(session.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Len(t, got.Questions, 2)

	_, err = svc.GetSession(session.ID, "user-2")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorNotFound))
}

func TestDeleteSessionCascades(t *testing.T) {
	llm := &fakeLLM{
		questions:  []string{"Q1", "Q2"},
		evaluation: &Evaluation{Score: 80, OverallFeedback: "ok"},
	}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	_, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, "user-1", dto.SubmitAnswerRequest{Answer: "a1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(session.ID, "user-1"))
	assert.Empty(t, store.sessions)
	assert.Empty(t, store.questions)
	assert.Empty(t, store.feedbacks)
}

func TestDeleteSessionOtherUserIsNotFound(t *testing.T) {
	llm := &fakeLLM{questions: []string{"Q1", "Q2"}}
	store, svc := newInterviewFixture(llm)
	session := startTestSession(t, store, svc, "user-1", 2)

	err := svc.DeleteSession(session.ID, "user-2")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.ErrorNotFound))
	assert.Len(t, store.sessions, 1)
}

func TestStartSessionPersistFailurePropagates(t *testing.T) {
	llm := &fakeLLM{questions: []string{"Q1", "Q2", "Q3"}}
	store, svc := newInterviewFixture(llm)
	store.createErr = errors.New("connection reset")

	_, err := svc.StartSession(context.Background(), "user-1", dto.StartInterviewRequest{
		Role:          "Backend Engineer",
		Difficulty:    model.DifficultyEasy,
		QuestionCount: 3,
	})
	require.Error(t, err)
	assert.Empty(t, store.sessions)
}
