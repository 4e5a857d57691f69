package postgres

import (
	"context"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	"gorm.io/gorm"
)

var submissionSortColumns = []string{"submitted_at", "participant_id", "created_at"}

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

// NewSubmissionPostgreSQL expects db to be opened with TranslateError enabled
// so unique violations on session_id surface as gorm.ErrDuplicatedKey.
func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, record *models.SubmissionRecord) error {
	return s.helpers.TranslateError(s.db.WithContext(ctx).Create(record).Error)
}

func (s SubmissionPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.SubmissionRecord, error) {
	var record models.SubmissionRecord
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&record).Error; err != nil {
		return nil, s.helpers.TranslateError(err)
	}
	return &record, nil
}

func (s SubmissionPostgreSQL) ExistsBySession(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.SubmissionRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.SubmissionRecord, int64, error) {
	var records []*models.SubmissionRecord
	var total int64

	query := s.db.WithContext(ctx).Model(&models.SubmissionRecord{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder,
		filters.Limit, filters.Offset, submissionSortColumns, "submitted_at")

	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s SubmissionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.StudyID != "" {
		query = query.Where("study_id = ?", filters.StudyID)
	}
	if filters.ParticipantID != "" {
		query = query.Where("participant_id = ?", filters.ParticipantID)
	}
	if filters.Variant != "" {
		query = query.Where("variant = ?", filters.Variant)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
