package trials

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

// Issue is a problem found in one trial of a trial file.
type Issue struct {
	Index   int
	TrialID string
	Problem string
}

func (i Issue) String() string {
	return fmt.Sprintf("trial %d (%s): %s", i.Index, i.TrialID, i.Problem)
}

// Inspect reports trials that cannot be shown or scored. need is the number
// of trials one session draws; a shorter file is reported once at index -1.
func Inspect(trials []models.Trial, need int) []Issue {
	var issues []Issue
	if len(trials) < need {
		issues = append(issues, Issue{Index: -1, Problem: fmt.Sprintf("file has %d trials, a session needs %d", len(trials), need)})
	}

	seen := make(map[string]int, len(trials))
	for i, t := range trials {
		add := func(problem string) {
			issues = append(issues, Issue{Index: i, TrialID: t.ID, Problem: problem})
		}

		if strings.TrimSpace(t.ID) == "" {
			add("missing id")
		} else if first, dup := seen[t.ID]; dup {
			add(fmt.Sprintf("duplicate id, first seen at trial %d", first))
		} else {
			seen[t.ID] = i
		}
		if strings.TrimSpace(t.Story) == "" {
			add("missing story")
		}
		if strings.TrimSpace(t.Question) == "" {
			add("missing question")
		}
		if len(t.Answers) < 2 {
			add(fmt.Sprintf("has %d answers, need at least 2", len(t.Answers)))
			continue
		}
		if len(t.TrueLabels) != len(t.Answers) {
			add("true_labels does not match answers")
			continue
		}
		correct := false
		for idx := range t.Answers {
			if t.IsCorrect(idx) {
				correct = true
				break
			}
		}
		if !correct {
			add("no answer is marked correct")
		}
	}
	return issues
}
