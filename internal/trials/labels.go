package trials

import (
	"strings"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

// CorrectMarker is appended to the correct option in the raw trial files.
const CorrectMarker = " (Correct Answer)"

// NormalizeLabels fills AnswersNoLabel and TrueLabels from the marked answers
// when the source file does not carry them.
func NormalizeLabels(t *models.Trial) {
	if len(t.AnswersNoLabel) == len(t.Answers) && len(t.TrueLabels) == len(t.Answers) {
		return
	}

	stripped := make([]string, len(t.Answers))
	labels := make([]int, len(t.Answers))
	for i, answer := range t.Answers {
		if strings.Contains(answer, CorrectMarker) {
			labels[i] = 1
		}
		stripped[i] = strings.TrimSpace(strings.ReplaceAll(answer, CorrectMarker, ""))
	}

	if len(t.AnswersNoLabel) != len(t.Answers) {
		t.AnswersNoLabel = stripped
	}
	if len(t.TrueLabels) != len(t.Answers) {
		t.TrueLabels = labels
	}
}
