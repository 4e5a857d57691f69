package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionPayload is the JSON object delivered to the survey collector.
type SubmissionPayload struct {
	ProlificPID string                 `json:"prolificPid"`
	StudyID     string                 `json:"studyId"`
	Condition   string                 `json:"condition"`
	TrialPages  map[string]TrialRecord `json:"trialPages"`
	ExitSurvey  Demographics           `json:"exitSurvey"`
}

// TrialRecord pairs a trial snapshot with the participant's response.
// Likert sessions fill LikertResponses, mcq sessions fill SelectedAnswerIdx.
type TrialRecord struct {
	LikertResponses   map[string]string `json:"likertResponses,omitempty"`
	SelectedAnswerIdx *string           `json:"selected_answer_idx,omitempty"`

	Story          string   `json:"story"`
	Question       string   `json:"question"`
	Answers        []string `json:"answers"`
	AnswersNoLabel []string `json:"answers_no_label,omitempty"`
	TrueLabels     []int    `json:"true_labels,omitempty"`
	DataSource     string   `json:"data_source"`
	ID             string   `json:"id"`
}

// SubmissionRecord is the archived copy of a delivered payload.
type SubmissionRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SessionID     string         `json:"session_id" gorm:"size:64;not null;uniqueIndex"`
	ParticipantID string         `json:"participant_id" gorm:"size:128;index"`
	StudyID       string         `json:"study_id" gorm:"size:128;index"`
	Condition     string         `json:"condition" gorm:"size:64"`
	Variant       Variant        `json:"variant" gorm:"size:16;not null"`
	Payload       datatypes.JSON `json:"payload" gorm:"type:jsonb"` // SubmissionPayload
	SubmittedAt   time.Time      `json:"submitted_at" gorm:"not null;index"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (SubmissionRecord) TableName() string {
	return "survey_submissions"
}
