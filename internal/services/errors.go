package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/story-survey-service/internal/errors"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Session errors
	ErrSessionNotFound  = errors.New("survey session not found")
	ErrAlreadySubmitted = errors.New("survey already submitted")
	ErrNotOnExitPage    = errors.New("survey can only be submitted from the exit page")
	ErrTrialsIncomplete = errors.New("not every trial page is answered")

	// Upstream errors
	ErrTrialLoadFailed = errors.New("trial data could not be loaded")
	ErrNotEnoughTrials = errors.New("trial file has fewer trials than the survey needs")
	ErrCollectorFailed = errors.New("submission could not be delivered")
)

// User facing messages for the exit survey.
const (
	MsgDemographicsIncomplete = "Please fill out all the demographic fields."
	MsgAgeOutOfRange          = "Please enter a valid age between 18 and 120."
	MsgTrialsIncomplete       = "Please answer all trial questions before submitting."
	MsgTrialLoadFailed        = "The study could not be loaded. Please try again later or contact the researchers."
	MsgCollectorFailed        = "Your answers could not be submitted. Please try again."
	MsgAlreadySubmitted       = "Your answers have already been submitted. Thank you!"
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// BusinessRuleError blocks an action and carries the message shown to the participant.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	Err     error                  `json:"-"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.Err
}

// ===== ERROR HELPERS =====

// gateViolation lifts a navigation gate failure into a business rule error.
func gateViolation(err error) error {
	var ge *flow.GateError
	if !errors.As(err, &ge) {
		return err
	}

	rule := "gate"
	switch {
	case errors.Is(err, flow.ErrConsentRequired):
		rule = "consent_required"
	case errors.Is(err, flow.ErrComprehensionFailed):
		rule = "comprehension_failed"
	case errors.Is(err, flow.ErrPageIncomplete):
		rule = "page_incomplete"
	case errors.Is(err, flow.ErrAtFirstPage):
		rule = "at_first_page"
	case errors.Is(err, flow.ErrAtLastPage):
		rule = "at_last_page"
	}

	ctx := map[string]interface{}{
		"page_index": ge.Page.Index,
		"page_kind":  string(ge.Page.Kind),
	}
	if len(ge.Missing) > 0 {
		ctx["inputs"] = ge.Missing
	}
	return &BusinessRuleError{Rule: rule, Message: ge.Message, Context: ctx, Err: err}
}

// demographicsViolation picks the exit survey message for a failed validation.
func demographicsViolation(verrs ValidationErrors) error {
	bre := &BusinessRuleError{
		Rule:    "demographics_incomplete",
		Message: MsgDemographicsIncomplete,
		Context: map[string]interface{}{"fields": verrs.Fields()},
		Err:     verrs,
	}
	if !verrs.HasRule("required") && verrs.HasRule("age_range") {
		bre.Rule = "age_out_of_range"
		bre.Message = MsgAgeOutOfRange
	}
	return bre
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsGateViolation reports whether err blocked a navigation or submit step.
func IsGateViolation(err error) bool {
	return IsBusinessRule(err) || flow.IsGateError(err)
}

func IsValidation(err error) bool {
	if IsBusinessRule(err) {
		return false
	}
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrBadRequest) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted)
}

// IsUpstream reports failures of the trial source or the collector.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrTrialLoadFailed) || errors.Is(err, ErrCollectorFailed)
}

// UserMessage returns the text to show a participant for err.
func UserMessage(err error) string {
	var bre *BusinessRuleError
	if errors.As(err, &bre) {
		return bre.Message
	}
	var ge *flow.GateError
	if errors.As(err, &ge) {
		return ge.Message
	}

	switch {
	case errors.Is(err, ErrTrialLoadFailed):
		return MsgTrialLoadFailed
	case errors.Is(err, ErrCollectorFailed):
		return MsgCollectorFailed
	case errors.Is(err, ErrAlreadySubmitted):
		return MsgAlreadySubmitted
	case errors.Is(err, ErrSessionNotFound):
		return "This survey session does not exist or has expired."
	case IsValidation(err):
		return "Some answers were not recognised. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
