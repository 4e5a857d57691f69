package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "story-survey-service"
	eventVersion = "1.0"
)

// EventType names a survey lifecycle event
type EventType string

const (
	EventSurveyStarted       EventType = "survey.started"
	EventSurveyGateRejected  EventType = "survey.gate_rejected"
	EventSurveySubmitted     EventType = "survey.submitted"
	EventSurveySubmitFailure EventType = "survey.submit_failed"
)

// SurveyEvent is the envelope written to the survey events topic
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SurveyStartedEvent struct {
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	StudyID       string    `json:"study_id"`
	Condition     string    `json:"condition"`
	Variant       string    `json:"variant"`
	TrialIDs      []string  `json:"trial_ids"`
	StartedAt     time.Time `json:"started_at"`
}

type SurveyGateRejectedEvent struct {
	SessionID string `json:"session_id"`
	PageIndex int    `json:"page_index"`
	PageKind  string `json:"page_kind"`
	Reason    string `json:"reason"`
}

type SurveySubmittedEvent struct {
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	StudyID       string    `json:"study_id"`
	Condition     string    `json:"condition"`
	Variant       string    `json:"variant"`
	TrialCount    int       `json:"trial_count"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type SurveySubmitFailedEvent struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

func NewSurveyStartedEvent(data SurveyStartedEvent) *SurveyEvent {
	return newEvent(EventSurveyStarted, data)
}

func NewSurveyGateRejectedEvent(data SurveyGateRejectedEvent) *SurveyEvent {
	return newEvent(EventSurveyGateRejected, data)
}

func NewSurveySubmittedEvent(data SurveySubmittedEvent) *SurveyEvent {
	return newEvent(EventSurveySubmitted, data)
}

func NewSurveySubmitFailedEvent(data SurveySubmitFailedEvent) *SurveyEvent {
	return newEvent(EventSurveySubmitFailure, data)
}

func newEvent(t EventType, data interface{}) *SurveyEvent {
	return &SurveyEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
