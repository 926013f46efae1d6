package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adeshpatel700-rgb/Mockmate/config"
	"github.com/adeshpatel700-rgb/Mockmate/internal/apperror"
	"github.com/rs/zerolog/log"
)

// Evaluation is the validated, clamped result of scoring one answer.
type Evaluation struct {
	Score           int
	OverallFeedback string
	Strengths       []string
	Improvements    []string
}

// GroqLLMService is the gateway to the Groq chat-completions API. It builds
// prompts, enforces the request timeout, and validates/coerces every field of
// the provider's JSON before anything reaches the lifecycle engine.
type GroqLLMService interface {
	GenerateQuestions(ctx context.Context, role, difficulty string, count int) ([]string, error)
	EvaluateAnswer(ctx context.Context, question, answer, role, difficulty string) (*Evaluation, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type groqLLMService struct {
	client   HTTPClient
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
}

func NewGroqLLMService(cfg *config.Config, client HTTPClient) GroqLLMService {
	if cfg.Groq.ApiKey == "" {
		log.Warn().Msg("GROQ_API_KEY is not set. GroqLLMService calls will fail.")
	}
	timeout := time.Duration(cfg.Groq.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &groqLLMService{
		client:   client,
		endpoint: cfg.Groq.BaseURL + "/chat/completions",
		apiKey:   cfg.Groq.ApiKey,
		model:    cfg.Groq.Model,
		timeout:  timeout,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completion round trip and returns the assistant
// message content. Transport failures, timeouts and non-2xx statuses map to
// UpstreamUnavailable; an unparsable envelope maps to UpstreamInvalid.
func (s *groqLLMService) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := chatRequest{
		Model:          s.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    0.7,
		MaxTokens:      maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Groq request failed")
		return "", apperror.NewUpstreamUnavailableError("AI service error: " + err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Msg("Groq returned non-success status")
		return "", apperror.NewUpstreamUnavailableError(fmt.Sprintf("AI service error: status %d", resp.StatusCode))
	}

	var cc chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		return "", apperror.NewUpstreamInvalidError("AI returned an unparsable response: " + err.Error())
	}
	if len(cc.Choices) == 0 {
		return "", apperror.NewUpstreamInvalidError("AI returned no choices")
	}
	return cc.Choices[0].Message.Content, nil
}

func (s *groqLLMService) GenerateQuestions(ctx context.Context, role, difficulty string, count int) ([]string, error) {
	prompt := fmt.Sprintf(`You are an expert technical interviewer for %s positions.
Generate exactly %d interview questions for a %s level candidate.
Focus on practical, real-world scenarios and technical depth appropriate for %s.

Return ONLY valid JSON with this exact structure:
{
  "questions": ["question 1 here", "question 2 here", ...]
}

Do not include any explanation, markdown, or text outside the JSON.`, role, count, difficulty, difficulty)

	content, err := s.complete(ctx, prompt, 512)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []interface{} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperror.NewUpstreamInvalidError("AI returned invalid JSON during question generation: " + err.Error())
	}

	questions := coerceStrings(parsed.Questions)
	if len(questions) < count {
		// Never pad with synthetic questions; a short list is a provider fault.
		return nil, apperror.NewUpstreamInvalidError("AI did not return the expected number of questions")
	}
	return questions[:count], nil
}

func (s *groqLLMService) EvaluateAnswer(ctx context.Context, question, answer, role, difficulty string) (*Evaluation, error) {
	prompt := fmt.Sprintf(`You are a senior %s technical interviewer evaluating a candidate's answer.
Candidate level: %s

Question: %s

Candidate's Answer: %s

Be constructive, specific, and fair. Score based on technical accuracy, clarity, and completeness.

Return ONLY valid JSON with this exact structure:
{
  "score": <integer 0-100>,
  "overall_feedback": "<2-3 sentences of constructive feedback>",
  "strengths": ["<specific strength 1>", "<specific strength 2>"],
  "improvements": ["<specific area to improve 1>", "<specific area to improve 2>"]
}`, role, difficulty, question, answer)

	content, err := s.complete(ctx, prompt, 768)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Score           *json.Number  `json:"score"`
		OverallFeedback *string       `json:"overall_feedback"`
		Strengths       []interface{} `json:"strengths"`
		Improvements    []interface{} `json:"improvements"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperror.NewUpstreamInvalidError("AI returned invalid JSON during answer evaluation: " + err.Error())
	}
	if parsed.Score == nil || parsed.OverallFeedback == nil || parsed.Strengths == nil || parsed.Improvements == nil {
		return nil, apperror.NewUpstreamInvalidError("AI response missing required feedback fields")
	}

	score, err := parsed.Score.Float64()
	if err != nil {
		return nil, apperror.NewUpstreamInvalidError("AI returned a non-numeric score")
	}

	return &Evaluation{
		Score:           clampScore(int(score)),
		OverallFeedback: *parsed.OverallFeedback,
		Strengths:       truncateList(coerceStrings(parsed.Strengths), 5),
		Improvements:    truncateList(coerceStrings(parsed.Improvements), 5),
	}, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func truncateList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

// coerceStrings keeps string entries and stringifies anything else; the
// provider is not trusted to respect field types.
func coerceStrings(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}
