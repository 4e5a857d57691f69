package handlers

import (
	"bytes"
	"net/http"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/render"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// SurveyHandler serves the participant-facing HTML flow. Every POST records
// the posted answers, applies the action and redirects back to the session.
type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	renderer      *render.Renderer
}

func NewSurveyHandler(surveyService services.SurveyService, renderer *render.Renderer, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		renderer:      renderer,
	}
}

// StartSurvey opens a session from the recruitment link and redirects to it.
func (h *SurveyHandler) StartSurvey(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.renderError(c, http.StatusBadRequest, "The study link is not valid.")
		return
	}

	h.LogRequest(c, "Starting survey", "participant_id", req.ParticipantID, "condition", req.Condition)

	view, err := h.surveyService.Start(c.Request.Context(), &req)
	if err != nil {
		status := statusFor(err)
		h.LogError(c, err, "Failed to start survey", "status_code", status)
		h.renderError(c, status, services.UserMessage(err))
		return
	}

	c.Redirect(http.StatusSeeOther, surveyPath(view.ID))
}

// ShowSurvey renders the session with only the current page visible.
func (h *SurveyHandler) ShowSurvey(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.surveyService.View(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, statusFor(err), services.UserMessage(err))
		return
	}
	if view.Submitted {
		h.renderThankYou(c)
		return
	}

	h.renderDocument(c, http.StatusOK, view, "")
}

// PostSurvey records the posted inputs and then applies action=next|prev|submit.
func (h *SurveyHandler) PostSurvey(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.renderError(c, http.StatusBadRequest, "The form could not be read.")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.surveyService.Record(ctx, id, &services.RecordRequest{
		Responses:    formAnswers(c),
		Consent:      formConsent(c),
		Demographics: formDemographics(c),
	}); err != nil {
		h.handlePageError(c, id, err)
		return
	}

	var err error
	switch action := c.PostForm("action"); action {
	case "next":
		_, err = h.surveyService.Next(ctx, id)
	case "prev":
		_, err = h.surveyService.Previous(ctx, id)
	case "submit":
		demographics := formDemographics(c)
		if demographics == nil {
			demographics = &models.Demographics{}
		}
		var result *services.SubmitResult
		result, err = h.surveyService.Submit(ctx, id, demographics)
		if err == nil {
			h.LogInfo(c, "Survey submitted", "trial_count", result.TrialCount)
		}
	default:
		h.LogWarn(c, "Unknown survey action", "action", action)
	}
	if err != nil {
		h.handlePageError(c, id, err)
		return
	}

	c.Redirect(http.StatusSeeOther, surveyPath(id))
}

// handlePageError re-renders the unchanged session with the failure message,
// or a standalone page when there is no session to show.
func (h *SurveyHandler) handlePageError(c *gin.Context, id string, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusNotFound:
		h.renderError(c, status, services.UserMessage(err))
		return
	case http.StatusConflict:
		c.Redirect(http.StatusSeeOther, surveyPath(id))
		return
	case http.StatusInternalServerError:
		h.LogError(c, err, "Survey action failed")
	default:
		h.LogWarn(c, "Survey action rejected", "status_code", status, "error", err)
	}

	view, viewErr := h.surveyService.View(c.Request.Context(), id)
	if viewErr != nil {
		h.renderError(c, statusFor(viewErr), services.UserMessage(viewErr))
		return
	}
	h.renderDocument(c, status, view, services.UserMessage(err))
}

func (h *SurveyHandler) renderDocument(c *gin.Context, status int, view *services.SessionView, notice string) {
	var buf bytes.Buffer
	if err := h.renderer.Document(&buf, view, surveyPath(view.ID), notice); err != nil {
		h.LogError(c, err, "Failed to render survey")
		h.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

func (h *SurveyHandler) renderThankYou(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.renderer.ThankYou(&buf); err != nil {
		h.LogError(c, err, "Failed to render thank you page")
		c.String(http.StatusInternalServerError, "Thank you!")
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

func (h *SurveyHandler) renderError(c *gin.Context, status int, message string) {
	var buf bytes.Buffer
	if err := h.renderer.ErrorPage(&buf, message); err != nil {
		h.LogError(c, err, "Failed to render error page")
		c.String(status, message)
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

func surveyPath(id string) string {
	return "/survey/" + id
}
