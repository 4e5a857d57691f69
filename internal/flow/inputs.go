package flow

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/story-survey-service/internal/errors"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

// LikertInputName is the radio group for statement q of trial page n.
func LikertInputName(n, q int) string {
	return fmt.Sprintf("likert-%d-%d", n, q)
}

// ChoiceInputName is the radio group for trial page n in choice mode.
func ChoiceInputName(n int) string {
	return fmt.Sprintf("mcq-%d", n)
}

// TrialInputNames lists the groups that must be answered on trial page n.
func TrialInputNames(v *Variant, n int) []string {
	if v.Mode == AnswerModeChoice {
		return []string{ChoiceInputName(n)}
	}
	names := make([]string, 0, len(v.LikertStatements))
	for q := 1; q <= len(v.LikertStatements); q++ {
		names = append(names, LikertInputName(n, q))
	}
	return names
}

// ValidateInput checks that name is a radio group of this variant and that
// value is one of its options.
func ValidateInput(v *Variant, s *models.Session, name, value string) *apperrors.ValidationError {
	if strings.HasPrefix(name, "comprehension-") {
		for _, q := range v.Comprehension {
			if q.ID == name {
				if value != "true" && value != "false" {
					return apperrors.NewValidationErrorWithRule(name, "must be true or false", "oneof", value)
				}
				return nil
			}
		}
		return unknownInput(name, value)
	}

	switch v.Mode {
	case AnswerModeLikert:
		var n, q int
		if _, err := fmt.Sscanf(name, "likert-%d-%d", &n, &q); err != nil || LikertInputName(n, q) != name {
			return unknownInput(name, value)
		}
		if n < 1 || n > v.TrialCount || q < 1 || q > len(v.LikertStatements) {
			return unknownInput(name, value)
		}
		if !inRange(value, 1, LikertPoints) {
			return apperrors.NewValidationErrorWithRule(name, fmt.Sprintf("must be between 1 and %d", LikertPoints), "value_range", value)
		}
	case AnswerModeChoice:
		var n int
		if _, err := fmt.Sscanf(name, "mcq-%d", &n); err != nil || ChoiceInputName(n) != name {
			return unknownInput(name, value)
		}
		trial, ok := s.Trial(n)
		if !ok || n > v.TrialCount {
			return unknownInput(name, value)
		}
		if !inRange(value, 0, len(trial.Options())-1) {
			return apperrors.NewValidationErrorWithRule(name, "is not an option of this question", "value_range", value)
		}
	}
	return nil
}

// IsInputName reports whether name looks like a survey radio group.
func IsInputName(name string) bool {
	return strings.HasPrefix(name, "comprehension-") ||
		strings.HasPrefix(name, "likert-") ||
		strings.HasPrefix(name, "mcq-")
}

func unknownInput(name, value string) *apperrors.ValidationError {
	return apperrors.NewValidationErrorWithRule(name, "is not a question of this survey", "known_input", value)
}

func inRange(value string, lo, hi int) bool {
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}
