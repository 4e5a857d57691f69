package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// ===== FILTER STRUCTS =====

type SubmissionFilters struct {
	StudyID       string     `json:"study_id"`
	ParticipantID string     `json:"participant_id"`
	Variant       string     `json:"variant"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
	SortBy        string     `json:"sort_by"`    // "submitted_at", "participant_id"
	SortOrder     string     `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORIES =====

// SessionRepository persists in-progress survey sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
}

// SubmissionRepository archives delivered payloads.
type SubmissionRepository interface {
	Create(ctx context.Context, record *models.SubmissionRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.SubmissionRecord, error)
	ExistsBySession(ctx context.Context, sessionID string) (bool, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.SubmissionRecord, int64, error)
}
