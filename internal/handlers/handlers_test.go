package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/auth"
	"github.com/SAP-F-2025/story-survey-service/internal/collector"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/render"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories/memory"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTrials struct {
	trials []models.Trial
	err    error
}

func (s *staticTrials) Load(context.Context, string) ([]models.Trial, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.trials, nil
}

type testServer struct {
	router    *gin.Engine
	survey    services.SurveyService
	collector *collector.MockCollector
	variant   *flow.Variant
	operator  *auth.Operator
}

func newTestServer(t *testing.T, variant models.Variant, source *staticTrials, limiter *RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := flow.LookupVariant(variant)
	require.NoError(t, err)

	if source == nil {
		source = &staticTrials{}
		for i := 0; i < v.TrialCount+3; i++ {
			source.trials = append(source.trials, models.Trial{
				ID:             fmt.Sprintf("false_belief_%d_true", i),
				Story:          fmt.Sprintf("Story %d", i),
				Question:       "Where will Anne look?",
				Answers:        []string{"box (Correct Answer)", "basket"},
				AnswersNoLabel: []string{"box", "basket"},
				TrueLabels:     []int{1, 0},
				DataSource:     "false_belief",
			})
		}
	}

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	submissions := memory.NewSubmissionMemory()
	mockCollector := collector.NewMockCollector()
	survey := services.NewSurveyService(services.SurveyServiceConfig{
		Variant:     v,
		Trials:      source,
		Sessions:    memory.NewSessionMemory(),
		Submissions: submissions,
		Collector:   mockCollector,
		Logger:      slogger,
	})

	operator := auth.NewOperator("test-operator-secret")
	router := gin.New()
	NewHandlerManager(
		survey,
		services.NewExportService(submissions, slogger),
		render.MustNew(),
		limiter,
		operator,
		utils.NewNopLogger(),
	).SetupRoutes(router)

	return &testServer{router: router, survey: survey, collector: mockCollector, variant: v, operator: operator}
}

func (ts *testServer) export(t *testing.T, target, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) operatorToken(t *testing.T) string {
	t.Helper()
	token, err := ts.operator.Issue("ops", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (ts *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (ts *testServer) postJSON(t *testing.T, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return ts.do(t, method, target, bytes.NewReader(raw), "application/json")
}

func (ts *testServer) startHTML(t *testing.T) string {
	t.Helper()
	w := ts.do(t, http.MethodGet, "/survey?participant_id=PID+1&experiment_id=study-1&condition=ours", nil, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/survey/"))
	return strings.TrimPrefix(location, "/survey/")
}

// walkToExit drives a session to the exit page through the service.
func (ts *testServer) walkToExit(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	consent := true
	answers := map[string]string{}
	for _, q := range ts.variant.Comprehension {
		answers[q.ID] = q.Expected
	}
	for n := 1; n <= ts.variant.TrialCount; n++ {
		for _, name := range flow.TrialInputNames(ts.variant, n) {
			if ts.variant.Mode == flow.AnswerModeChoice {
				answers[name] = "0"
			} else {
				answers[name] = "3"
			}
		}
	}
	_, err := ts.survey.Record(ctx, id, &services.RecordRequest{Responses: answers, Consent: &consent})
	require.NoError(t, err)
	for i := 0; i < ts.variant.TotalPages()-1; i++ {
		_, err := ts.survey.Next(ctx, id)
		require.NoError(t, err)
	}
}

func TestSurveyHTML_StartAndConsentGate(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, nil, nil)
	id := ts.startHTML(t)

	session, err := ts.survey.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "PID 1", session.ParticipantID)
	assert.Equal(t, "study-1", session.StudyID)

	w := ts.do(t, http.MethodGet, "/survey/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<div class="page" id="consent-page"`)

	w = ts.postForm(t, "/survey/"+id, url.Values{"consent_page": {"1"}, "action": {"next"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Please check the consent box to continue.")
	assert.Contains(t, w.Body.String(), `<div class="page" id="consent-page"`)

	w = ts.postForm(t, "/survey/"+id, url.Values{"consent_page": {"1"}, "consent": {"on"}, "action": {"next"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = ts.do(t, http.MethodGet, "/survey/"+id, nil, "")
	assert.Contains(t, w.Body.String(), `<div class="page" id="instructions-page-1"`)
	assert.Contains(t, w.Body.String(), `id="consent-checkbox" value="on" checked`)

	w = ts.postForm(t, "/survey/"+id, url.Values{"consent_page": {"1"}, "consent": {"on"}, "action": {"prev"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	view, err := ts.survey.View(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Cursor)
}

func TestSurveyHTML_TrialLoadFailure(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, &staticTrials{err: errors.New("connection refused")}, nil)

	w := ts.do(t, http.MethodGet, "/survey?participant_id=p&experiment_id=e&condition=ours", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `id="fatal-error"`)
	assert.Contains(t, w.Body.String(), services.MsgTrialLoadFailed)
}

func TestSurveyHTML_SubmitFlow(t *testing.T) {
	ts := newTestServer(t, models.VariantMCQ, nil, nil)
	id := ts.startHTML(t)
	ts.walkToExit(t, id)

	form := url.Values{
		"consent_page": {"1"},
		"consent":      {"on"},
		"action":       {"submit"},
		"age":          {"17"},
		"gender":       {"female"},
		"race":         {"asian"},
		"ethnicity":    {"non-hispanic"},
	}
	w := ts.postForm(t, "/survey/"+id, form)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), services.MsgAgeOutOfRange)
	assert.Contains(t, w.Body.String(), `value="17"`)
	assert.Equal(t, 0, ts.collector.Calls())

	form.Set("age", "25")
	w = ts.postForm(t, "/survey/"+id, form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, ts.collector.Calls())

	w = ts.do(t, http.MethodGet, "/survey/"+id, nil, "")
	assert.Contains(t, w.Body.String(), `id="thank-you"`)

	w = ts.postForm(t, "/survey/"+id, form)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, ts.collector.Calls())
}

func TestSurveyHTML_DemographicsSurviveNavigation(t *testing.T) {
	ts := newTestServer(t, models.VariantMCQ, nil, nil)
	id := ts.startHTML(t)
	ts.walkToExit(t, id)

	form := url.Values{
		"consent_page": {"1"},
		"consent":      {"on"},
		"action":       {"prev"},
		"age":          {"25"},
		"gender":       {"female"},
		"race":         {" asian"},
		"ethnicity":    {"non-hispanic"},
	}
	w := ts.postForm(t, "/survey/"+id, form)
	require.Equal(t, http.StatusSeeOther, w.Code)

	session, err := ts.survey.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ts.variant.TotalPages()-2, session.Cursor)
	assert.Equal(t, models.Demographics{Age: "25", Gender: "female", Race: " asian", Ethnicity: "non-hispanic"}, session.Demographics)

	w = ts.postForm(t, "/survey/"+id, url.Values{"consent_page": {"1"}, "consent": {"on"}, "action": {"next"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = ts.do(t, http.MethodGet, "/survey/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="age" name="age" min="18" max="120" value="25"`)
	assert.Contains(t, body, `id="gender" name="gender" value="female"`)
	assert.Contains(t, body, `id="default-action" name="action" value="submit"`)
	assert.Equal(t, 0, ts.collector.Calls())
}

func TestSurveyHTML_UnknownSession(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, nil, nil)

	w := ts.do(t, http.MethodGet, "/survey/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `id="fatal-error"`)
}

func TestSessionAPI_Navigation(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, nil, nil)

	w := ts.postJSON(t, http.MethodPost, "/api/v1/sessions", services.StartSessionRequest{
		ParticipantID: "p-1", ExperimentID: "e-1", Condition: "ours",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var view services.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 37, view.TotalPages)
	assert.Equal(t, 0, view.Cursor)
	assert.False(t, view.CanAdvance)
	base := "/api/v1/sessions/" + view.ID

	w = ts.do(t, http.MethodPost, base+"/next", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "Please check the consent box to continue.", errResp.Message)
	assert.Contains(t, w.Body.String(), `"rule":"consent_required"`)

	w = ts.do(t, http.MethodPost, base+"/previous", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.postJSON(t, http.MethodPut, base+"/responses", map[string]interface{}{
		"responses": map[string]string{"likert-1-1": "9"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.postJSON(t, http.MethodPut, base+"/responses", map[string]interface{}{"consent": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, base+"/next", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Cursor)
	assert.Equal(t, flow.PageInstructions, view.Page.Kind)

	w = ts.do(t, http.MethodGet, "/api/v1/sessions/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionAPI_Submit(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, nil, nil)
	started, err := ts.survey.Start(context.Background(), &services.StartSessionRequest{
		ParticipantID: "p-1", ExperimentID: "e-1", Condition: "ours",
	})
	require.NoError(t, err)
	base := "/api/v1/sessions/" + started.ID

	demographics := models.Demographics{Age: "25", Gender: "male", Race: "white", Ethnicity: "hispanic"}

	w := ts.postJSON(t, http.MethodPost, base+"/submit", demographics)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "not_on_exit_page")

	ts.walkToExit(t, started.ID)

	w = ts.postJSON(t, http.MethodPost, base+"/submit", models.Demographics{Age: "25"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), services.MsgDemographicsIncomplete)

	w = ts.postJSON(t, http.MethodPost, base+"/submit", demographics)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"trial_count":30`)

	payloads := ts.collector.Payloads()
	require.Len(t, payloads, 1)
	assert.Len(t, payloads[0].TrialPages, 30)
	assert.Equal(t, demographics, payloads[0].ExitSurvey)

	w = ts.postJSON(t, http.MethodPost, base+"/submit", demographics)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, ts.collector.Calls())

	w = ts.export(t, "/api/v1/submissions/export?study_id=e-1", ts.operatorToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "submissions_e-1_")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestExport_RequiresOperatorToken(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, nil, nil)
	target := "/api/v1/submissions/export"

	w := ts.export(t, target, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing bearer token")

	w = ts.export(t, target, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := auth.NewOperator("some-other-secret").Issue("ops", time.Hour)
	require.NoError(t, err)
	w = ts.export(t, target, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.export(t, target, ts.operatorToken(t))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExport_DisabledWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v, err := flow.LookupVariant(models.VariantLikert)
	require.NoError(t, err)
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	submissions := memory.NewSubmissionMemory()
	survey := services.NewSurveyService(services.SurveyServiceConfig{
		Variant:     v,
		Trials:      &staticTrials{},
		Sessions:    memory.NewSessionMemory(),
		Submissions: submissions,
		Collector:   collector.NewMockCollector(),
		Logger:      slogger,
	})

	router := gin.New()
	NewHandlerManager(survey, services.NewExportService(submissions, slogger), render.MustNew(), nil, auth.NewOperator(""), utils.NewNopLogger()).SetupRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimiter(t *testing.T) {
	ts := newTestServer(t, models.VariantLikert, nil, NewRateLimiter(0.001, 1, nil))

	first := ts.do(t, http.MethodGet, "/survey?condition=ours", nil, "")
	assert.Equal(t, http.StatusSeeOther, first.Code)

	second := ts.do(t, http.MethodGet, "/survey?condition=ours", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	w := ts.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
