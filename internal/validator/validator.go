package validator

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	MinAge = 18
	MaxAge = 120
)

// Validator wraps a go-playground validator with the survey rules registered.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs the struct tags and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateDemographics checks the exit survey. Values are trimmed in place first.
func (v *Validator) ValidateDemographics(d *models.Demographics) error {
	d.Age = strings.TrimSpace(d.Age)
	d.Gender = strings.TrimSpace(d.Gender)
	d.Race = strings.TrimSpace(d.Race)
	d.Ethnicity = strings.TrimSpace(d.Ethnicity)
	return v.Validate(d)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("age_range", validateAgeRange)
	validate.RegisterValidation("survey_variant", validateSurveyVariant)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateAgeRange accepts any numeric string within [MinAge, MaxAge].
func validateAgeRange(fl validator.FieldLevel) bool {
	age, ok := ParseAge(fl.Field().String())
	return ok && age >= MinAge && age <= MaxAge
}

func validateSurveyVariant(fl validator.FieldLevel) bool {
	switch models.Variant(fl.Field().String()) {
	case models.VariantLikert, models.VariantMCQ:
		return true
	}
	return false
}

func ParseAge(raw string) (float64, bool) {
	age, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(age) || math.IsInf(age, 0) {
		return 0, false
	}
	return age, true
}
