package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	goredis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "survey:session:"

// SessionRedis stores each session as one JSON value that expires ttl after creation.
type SessionRedis struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSessionRedis(client *goredis.Client, ttl time.Duration) repositories.SessionRepository {
	return &SessionRedis{client: client, ttl: ttl}
}

func (r *SessionRedis) Create(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repositories.ErrDuplicate
	}
	return nil
}

func (r *SessionRedis) GetByID(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repositories.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Update overwrites an existing session and keeps its remaining TTL.
func (r *SessionRedis) Update(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetXX(ctx, sessionKey(session.ID), data, goredis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
