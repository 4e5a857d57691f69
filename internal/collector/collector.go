package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
)

// Collector delivers a finished survey to the external collection endpoint.
type Collector interface {
	Submit(ctx context.Context, payload *models.SubmissionPayload) error
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector responded with status %d: %s", e.StatusCode, e.Body)
}

type HTTPCollector struct {
	endpoint string
	client   *http.Client
	logger   utils.Logger
}

func NewHTTPCollector(endpoint string, timeout time.Duration, logger utils.Logger) *HTTPCollector {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &HTTPCollector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "collector"),
	}
}

func (c *HTTPCollector) Submit(ctx context.Context, payload *models.SubmissionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.InfoContext(ctx, "Submission delivered",
		"participant_id", payload.ProlificPID,
		"trials", len(payload.TrialPages),
		"status_code", resp.StatusCode,
		"duration", time.Since(start).String())
	return nil
}

// MockCollector keeps every payload in memory.
type MockCollector struct {
	mu       sync.Mutex
	payloads []models.SubmissionPayload
	Err      error
}

func NewMockCollector() *MockCollector {
	return &MockCollector{}
}

func (m *MockCollector) Submit(_ context.Context, payload *models.SubmissionPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.payloads = append(m.payloads, *payload)
	return nil
}

func (m *MockCollector) Payloads() []models.SubmissionPayload {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.SubmissionPayload, len(m.payloads))
	copy(out, m.payloads)
	return out
}

func (m *MockCollector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}
