package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
)

type SubmissionMemory struct {
	mu      sync.RWMutex
	nextID  uint
	records []*models.SubmissionRecord
}

func NewSubmissionMemory() *SubmissionMemory {
	return &SubmissionMemory{nextID: 1}
}

func (m *SubmissionMemory) Create(_ context.Context, record *models.SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.SessionID == record.SessionID {
			return repositories.ErrDuplicate
		}
	}

	record.ID = m.nextID
	m.nextID++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	stored, err := cloneRecord(record)
	if err != nil {
		return err
	}
	m.records = append(m.records, stored)
	return nil
}

func (m *SubmissionMemory) GetBySessionID(_ context.Context, sessionID string) (*models.SubmissionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.SessionID == sessionID {
			return cloneRecord(r)
		}
	}
	return nil, repositories.ErrRecordNotFound
}

func (m *SubmissionMemory) ExistsBySession(ctx context.Context, sessionID string) (bool, error) {
	_, err := m.GetBySessionID(ctx, sessionID)
	if repositories.IsNotFoundError(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *SubmissionMemory) List(_ context.Context, filters repositories.SubmissionFilters) ([]*models.SubmissionRecord, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*models.SubmissionRecord
	for _, r := range m.records {
		if !matches(r, filters) {
			continue
		}
		clone, err := cloneRecord(r)
		if err != nil {
			return nil, 0, err
		}
		matched = append(matched, clone)
	}

	desc := filters.SortOrder == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		if filters.SortBy == "participant_id" {
			less = a.ParticipantID < b.ParticipantID
		} else {
			less = a.SubmittedAt.Before(b.SubmittedAt)
		}
		if desc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func matches(r *models.SubmissionRecord, f repositories.SubmissionFilters) bool {
	if f.StudyID != "" && r.StudyID != f.StudyID {
		return false
	}
	if f.ParticipantID != "" && r.ParticipantID != f.ParticipantID {
		return false
	}
	if f.Variant != "" && string(r.Variant) != f.Variant {
		return false
	}
	if f.DateFrom != nil && r.SubmittedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.SubmittedAt.After(*f.DateTo) {
		return false
	}
	return true
}

func cloneRecord(in *models.SubmissionRecord) (*models.SubmissionRecord, error) {
	return roundTrip(in, &models.SubmissionRecord{})
}
