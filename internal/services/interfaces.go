package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

// SurveyService drives one participant through the page sequence.
type SurveyService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	View(ctx context.Context, id string) (*SessionView, error)
	Record(ctx context.Context, id string, req *RecordRequest) (*SessionView, error)
	Next(ctx context.Context, id string) (*SessionView, error)
	Previous(ctx context.Context, id string) (*SessionView, error)
	Submit(ctx context.Context, id string, demographics *models.Demographics) (*SubmitResult, error)

	Definition() *flow.Variant
}

// ExportService turns archived submissions into analysis workbooks.
type ExportService interface {
	ExportStudy(ctx context.Context, studyID string) ([]byte, error)
}

// TrialSource yields the trial list for a condition in file order.
type TrialSource interface {
	Load(ctx context.Context, condition string) ([]models.Trial, error)
}

// ===== REQUESTS =====

// StartSessionRequest carries the recruitment platform's query parameters.
// Missing values are stored as empty strings.
type StartSessionRequest struct {
	ParticipantID string `json:"participant_id" form:"participant_id"`
	ExperimentID  string `json:"experiment_id" form:"experiment_id"`
	Condition     string `json:"condition" form:"condition"`
}

type RecordRequest struct {
	Responses    map[string]string    `json:"responses"`
	Consent      *bool                `json:"consent,omitempty"`
	Demographics *models.Demographics `json:"demographics,omitempty"`
}

// ===== RESPONSES =====

// SessionView is everything needed to render the current state of a session.
type SessionView struct {
	ID            string              `json:"id"`
	ParticipantID string              `json:"participant_id"`
	StudyID       string              `json:"study_id"`
	Condition     string              `json:"condition"`
	Variant       models.Variant      `json:"variant"`
	Cursor        int                 `json:"cursor"`
	TotalPages    int                 `json:"total_pages"`
	Progress      float64             `json:"progress"`
	Page          flow.Page           `json:"page"`
	CanAdvance    bool                `json:"can_advance"`
	IsFirst       bool                `json:"is_first"`
	IsLast        bool                `json:"is_last"`
	Consent       bool                `json:"consent"`
	Submitted     bool                `json:"submitted"`
	Responses     map[string]string   `json:"responses"`
	Demographics  models.Demographics `json:"demographics"`
	CurrentTrial  *models.Trial       `json:"current_trial,omitempty"`

	Session    *models.Session `json:"-"`
	Definition *flow.Variant   `json:"-"`
	Pages      []flow.Page     `json:"-"`
}

type SubmitResult struct {
	SessionID   string    `json:"session_id"`
	TrialCount  int       `json:"trial_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}
