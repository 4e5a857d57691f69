package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("age", "must be a number between 18 and 120", "17")

	assert.Equal(t, "age", err.Field)
	assert.Equal(t, "17", err.Value)
	assert.Equal(t, "validation error on field 'age': must be a number between 18 and 120", err.Error())
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationErrorWithRule("gender", "is required", "required", ""))
	assert.Equal(t, "validation failed: gender is required", errs.Error())

	errs = append(errs, *NewValidationErrorWithRule("age", "must be a number between 18 and 120", "age_range", "200"))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestValidationErrors_HasRuleAndFields(t *testing.T) {
	errs := ValidationErrors{
		*NewValidationErrorWithRule("race", "is required", "required", ""),
		*NewValidationErrorWithRule("age", "must be a number between 18 and 120", "age_range", "9"),
	}

	assert.True(t, errs.HasRule("required"))
	assert.False(t, errs.HasRule("max"))
	assert.Equal(t, []string{"race", "age"}, errs.Fields())
}

func TestToValidationErrors(t *testing.T) {
	type form struct {
		Gender string `validate:"required"`
		Mode   string `validate:"oneof=http mock"`
	}

	err := validator.New().Struct(form{Mode: "smtp"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "Gender", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "oneof", errs[1].Rule)
	assert.Equal(t, "must be one of: http, mock", errs[1].Message)

	assert.Nil(t, ToValidationErrors(assert.AnError))
}
