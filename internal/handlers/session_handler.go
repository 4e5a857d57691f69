package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the survey state machine as JSON.
type SessionHandler struct {
	BaseHandler
	surveyService services.SurveyService
}

func NewSessionHandler(surveyService services.SurveyService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
	}
}

// CreateSession starts a new survey session
// @Summary Start session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Recruitment parameters"
// @Success 201 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Creating session", "participant_id", req.ParticipantID, "condition", req.Condition)

	view, err := h.surveyService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current state of a session
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.surveyService.View(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RecordResponses stores radio selections and the consent flag
// @Summary Record responses
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param responses body services.RecordRequest true "Selections"
// @Success 200 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/responses [put]
func (h *SessionHandler) RecordResponses(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	view, err := h.surveyService.Record(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// NextPage advances the cursor when the current page's gate passes
// @Summary Next page
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/next [post]
func (h *SessionHandler) NextPage(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.surveyService.Next(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// PreviousPage moves the cursor back one page
// @Summary Previous page
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/previous [post]
func (h *SessionHandler) PreviousPage(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.surveyService.Previous(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitSession validates the exit survey and delivers the session
// @Summary Submit session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param demographics body models.Demographics true "Exit survey"
// @Success 200 {object} SuccessResponse{data=services.SubmitResult}
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var demographics models.Demographics
	if err := c.ShouldBindJSON(&demographics); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	result, err := h.surveyService.Submit(c.Request.Context(), id, &demographics)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Survey submitted", result, "trial_count", result.TrialCount)
}
