package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// formAnswers picks the survey radio groups out of a posted form.
func formAnswers(c *gin.Context) map[string]string {
	answers := make(map[string]string)
	for name, values := range c.Request.PostForm {
		if !flow.IsInputName(name) || len(values) == 0 {
			continue
		}
		answers[name] = values[len(values)-1]
	}
	return answers
}

// formConsent reads the consent checkbox. It is nil when the form did not
// carry the consent page.
func formConsent(c *gin.Context) *bool {
	if _, ok := c.Request.PostForm["consent_page"]; !ok {
		return nil
	}
	_, checked := c.Request.PostForm["consent"]
	return &checked
}

// formDemographics reads the exit survey fields as typed. It is nil when the
// form carried none of them.
func formDemographics(c *gin.Context) *models.Demographics {
	form := c.Request.PostForm
	present := false
	for _, key := range []string{"age", "gender", "race", "ethnicity"} {
		if _, ok := form[key]; ok {
			present = true
			break
		}
	}
	if !present {
		return nil
	}
	return &models.Demographics{
		Age:       form.Get("age"),
		Gender:    form.Get("gender"),
		Race:      form.Get("race"),
		Ethnicity: form.Get("ethnicity"),
	}
}
