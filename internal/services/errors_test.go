package services

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/SAP-F-2025/story-survey-service/internal/errors"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	gate := &flow.GateError{Message: "Please check the consent box to continue.", Err: flow.ErrConsentRequired}
	lifted := gateViolation(gate)
	verrs := apperrors.ValidationErrors{*apperrors.NewValidationErrorWithRule("mcq-1", "bad", "value_range", "9")}

	tests := []struct {
		name       string
		err        error
		gate       bool
		validation bool
		notFound   bool
		conflict   bool
		upstream   bool
	}{
		{name: "gate", err: lifted, gate: true},
		{name: "raw gate", err: gate, gate: true},
		{name: "validation", err: verrs, validation: true},
		{name: "wrapped validation", err: fmt.Errorf("record: %w", verrs), validation: true},
		{name: "demographics", err: demographicsViolation(verrs), gate: true},
		{name: "not found", err: ErrSessionNotFound, notFound: true},
		{name: "conflict", err: ErrAlreadySubmitted, conflict: true},
		{name: "trial load", err: fmt.Errorf("%w: %w", ErrTrialLoadFailed, errors.New("x")), upstream: true},
		{name: "collector", err: fmt.Errorf("%w: timeout", ErrCollectorFailed), upstream: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.gate, IsGateViolation(tt.err))
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.conflict, IsConflict(tt.err))
			assert.Equal(t, tt.upstream, IsUpstream(tt.err))
		})
	}
}

func TestGateViolationRules(t *testing.T) {
	tests := []struct {
		err  error
		rule string
	}{
		{flow.ErrConsentRequired, "consent_required"},
		{flow.ErrComprehensionFailed, "comprehension_failed"},
		{flow.ErrPageIncomplete, "page_incomplete"},
		{flow.ErrAtFirstPage, "at_first_page"},
		{flow.ErrAtLastPage, "at_last_page"},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			err := gateViolation(&flow.GateError{Message: "m", Missing: []string{"likert-1-1"}, Err: tt.err})

			var bre *BusinessRuleError
			assert.True(t, errors.As(err, &bre))
			assert.Equal(t, tt.rule, bre.Rule)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []string{"likert-1-1"}, bre.Context["inputs"])
		})
	}

	assert.NoError(t, gateViolation(nil))
}

func TestDemographicsViolationMessage(t *testing.T) {
	age := apperrors.ValidationErrors{{Field: "age", Rule: "age_range"}}
	assert.Equal(t, MsgAgeOutOfRange, UserMessage(demographicsViolation(age)))

	mixed := apperrors.ValidationErrors{{Field: "age", Rule: "age_range"}, {Field: "race", Rule: "required"}}
	assert.Equal(t, MsgDemographicsIncomplete, UserMessage(demographicsViolation(mixed)))
}
