package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
)

// SessionMemory keeps sessions in process. Values are deep copied on the way
// in and out so callers never share state with the store.
type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionMemory() *SessionMemory {
	return &SessionMemory{sessions: make(map[string]*models.Session)}
}

func (m *SessionMemory) Create(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return repositories.ErrDuplicate
	}
	stored, err := cloneSession(session)
	if err != nil {
		return err
	}
	m.sessions[session.ID] = stored
	return nil
}

func (m *SessionMemory) GetByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return cloneSession(session)
}

func (m *SessionMemory) Update(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; !exists {
		return repositories.ErrRecordNotFound
	}
	stored, err := cloneSession(session)
	if err != nil {
		return err
	}
	m.sessions[session.ID] = stored
	return nil
}

func cloneSession(in *models.Session) (*models.Session, error) {
	return roundTrip(in, &models.Session{})
}

// roundTrip copies in through its JSON form, the same shape the redis store keeps.
func roundTrip[T any](in *T, out *T) (*T, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
