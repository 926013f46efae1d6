package controller

import (
	"net/http"
	"strconv"

	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/adeshpatel700-rgb/Mockmate/internal/middleware"
	"github.com/adeshpatel700-rgb/Mockmate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultHistoryLimit = 20

type InterviewController struct {
	interviewSvc service.InterviewService
	analyticsSvc service.AnalyticsService
}

func NewInterviewController(interviewSvc service.InterviewService, analyticsSvc service.AnalyticsService) *InterviewController {
	return &InterviewController{
		interviewSvc: interviewSvc,
		analyticsSvc: analyticsSvc,
	}
}

// StartSession godoc
// @Summary Start a mock interview session
// @Description Generates the question set for the requested role and difficulty and creates the session
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body dto.StartInterviewRequest true "Session parameters"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 502 {object} dto.ErrorResponse "AI provider returned an unusable question set"
// @Failure 503 {object} dto.ErrorResponse "AI provider unreachable"
// @Router /interviews/start [post]
func (ctrl *InterviewController) StartSession(c *gin.Context) {
	var req dto.StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind StartInterviewRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.interviewSvc.StartSession(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSession godoc
// @Summary Get a session with its questions
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /interviews/{session_id} [get]
func (ctrl *InterviewController) GetSession(c *gin.Context) {
	resp, err := ctrl.interviewSvc.GetSession(c.Param("session_id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitAnswer godoc
// @Summary Submit an answer for evaluation
// @Description Stores the answer, evaluates it through the AI provider and returns the feedback. Completing the last question finalizes the session score.
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param question_id path string true "Question ID"
// @Param answer body dto.SubmitAnswerRequest true "Answer text"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or question already answered"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Session or question not found"
// @Failure 502 {object} dto.ErrorResponse "AI provider returned an unusable evaluation"
// @Failure 503 {object} dto.ErrorResponse "AI provider unreachable"
// @Router /interviews/{session_id}/questions/{question_id}/answer [post]
func (ctrl *InterviewController) SubmitAnswer(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind SubmitAnswerRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.interviewSvc.SubmitAnswer(
		c.Request.Context(),
		c.Param("session_id"),
		c.Param("question_id"),
		middleware.UserID(c),
		req,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSession godoc
// @Summary Delete a session and all its questions and feedback
// @Tags interviews
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 204 "Deleted"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /interviews/{session_id} [delete]
func (ctrl *InterviewController) DeleteSession(c *gin.Context) {
	if err := ctrl.interviewSvc.DeleteSession(c.Param("session_id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAnalytics godoc
// @Summary Get performance analytics for the authenticated user
// @Description Returns completed-session totals, average and best scores, and the 7-day daily score trend
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /interviews/analytics [get]
func (ctrl *InterviewController) GetAnalytics(c *gin.Context) {
	resp, err := ctrl.analyticsSvc.GetAnalytics(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory godoc
// @Summary List the user's completed sessions, most recent first
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum sessions to return" default(20)
// @Success 200 {array} dto.SessionHistoryItem
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /interviews/history [get]
func (ctrl *InterviewController) GetHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	items, err := ctrl.analyticsSvc.GetHistory(middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
