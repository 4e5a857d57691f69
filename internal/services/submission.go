package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/events"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/jinzhu/copier"
	"gorm.io/datatypes"
)

// Submit validates the exit survey and delivers the session to the collector.
// The collector is called at most once per session.
func (s *surveyService) Submit(ctx context.Context, id string, demographics *models.Demographics) (result *SubmitResult, err error) {
	start := time.Now()
	defer func() { s.opLogger.LogOperation(ctx, "submit", id, time.Since(start), err) }()

	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if s.nav.Current(session).Kind != flow.PageExit {
		return nil, &BusinessRuleError{
			Rule:    "not_on_exit_page",
			Message: "Please complete all pages before submitting.",
			Context: map[string]interface{}{"page_index": session.Cursor},
			Err:     ErrNotOnExitPage,
		}
	}

	// entered values are kept even when they fail validation
	d := *demographics
	verr := s.validator.ValidateDemographics(&d)
	session.Demographics = d
	session.UpdatedAt = s.now()
	if verr != nil {
		if saveErr := s.sessions.Update(ctx, session); saveErr != nil {
			return nil, fmt.Errorf("failed to save session: %w", saveErr)
		}
		var verrs ValidationErrors
		if errors.As(verr, &verrs) {
			return nil, demographicsViolation(verrs)
		}
		return nil, verr
	}

	if pending := s.nav.UnansweredTrials(session); len(pending) > 0 {
		return nil, &BusinessRuleError{
			Rule:    "trials_incomplete",
			Message: MsgTrialsIncomplete,
			Context: map[string]interface{}{"trial_pages": pending},
			Err:     ErrTrialsIncomplete,
		}
	}

	if s.submissions != nil {
		exists, err := s.submissions.ExistsBySession(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "Submission archive lookup failed", "session_id", id, "error", err)
		} else if exists {
			return nil, ErrAlreadySubmitted
		}
	}

	payload, err := BuildPayload(s.variant, session)
	if err != nil {
		return nil, err
	}

	if err := s.collector.Submit(ctx, payload); err != nil {
		if saveErr := s.sessions.Update(ctx, session); saveErr != nil {
			s.logger.WarnContext(ctx, "Failed to save demographics", "session_id", id, "error", saveErr)
		}
		s.publish(ctx, id, events.NewSurveySubmitFailedEvent(events.SurveySubmitFailedEvent{
			SessionID: id,
			Reason:    err.Error(),
		}))
		return nil, fmt.Errorf("%w: %w", ErrCollectorFailed, err)
	}

	submittedAt := s.now()
	session.Submitted = true
	session.SubmittedAt = &submittedAt
	session.UpdatedAt = submittedAt
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "Failed to mark session submitted", "session_id", id, "error", err)
	}

	s.archive(ctx, session, payload, submittedAt)

	s.publish(ctx, id, events.NewSurveySubmittedEvent(events.SurveySubmittedEvent{
		SessionID:     id,
		ParticipantID: session.ParticipantID,
		StudyID:       session.StudyID,
		Condition:     session.Condition,
		Variant:       string(session.Variant),
		TrialCount:    len(payload.TrialPages),
		SubmittedAt:   submittedAt,
	}))

	return &SubmitResult{
		SessionID:   id,
		TrialCount:  len(payload.TrialPages),
		SubmittedAt: submittedAt,
	}, nil
}

func (s *surveyService) archive(ctx context.Context, session *models.Session, payload *models.SubmissionPayload, submittedAt time.Time) {
	if s.submissions == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode submission for archive", "session_id", session.ID, "error", err)
		return
	}

	record := &models.SubmissionRecord{
		SessionID:     session.ID,
		ParticipantID: session.ParticipantID,
		StudyID:       session.StudyID,
		Condition:     session.Condition,
		Variant:       session.Variant,
		Payload:       datatypes.JSON(raw),
		SubmittedAt:   submittedAt,
	}
	if err := s.submissions.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "Failed to archive submission", "session_id", session.ID, "error", err)
	}
}

// BuildPayload assembles the collector payload: one record per trial page
// keyed trial1..trialN, plus the ids and the exit survey.
func BuildPayload(v *flow.Variant, session *models.Session) (*models.SubmissionPayload, error) {
	payload := &models.SubmissionPayload{
		ProlificPID: session.ParticipantID,
		StudyID:     session.StudyID,
		Condition:   session.Condition,
		TrialPages:  make(map[string]models.TrialRecord, v.TrialCount),
		ExitSurvey:  session.Demographics,
	}

	for n := 1; n <= v.TrialCount; n++ {
		trial, ok := session.Trial(n)
		if !ok {
			return nil, fmt.Errorf("session %s has no trial %d", session.ID, n)
		}

		var record models.TrialRecord
		if err := copier.CopyWithOption(&record, trial, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("copy trial %d: %w", n, err)
		}

		switch v.Mode {
		case flow.AnswerModeLikert:
			record.AnswersNoLabel = nil
			record.TrueLabels = nil
			record.LikertResponses = make(map[string]string, len(v.LikertStatements))
			for q := 1; q <= len(v.LikertStatements); q++ {
				value, _ := session.Response(flow.LikertInputName(n, q))
				record.LikertResponses["likert"+strconv.Itoa(q)] = value
			}
		case flow.AnswerModeChoice:
			value, _ := session.Response(flow.ChoiceInputName(n))
			record.SelectedAnswerIdx = &value
		}

		payload.TrialPages["trial"+strconv.Itoa(n)] = record
	}

	return payload, nil
}
