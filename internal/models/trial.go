package models

// Trial is one story + question + answer options unit shown to a participant.
// Field names follow the trial data files produced by the condition sampler.
type Trial struct {
	Story          string   `json:"story"`
	Question       string   `json:"question"`
	Answers        []string `json:"answers"`
	AnswersNoLabel []string `json:"answers_no_label,omitempty"`
	TrueLabels     []int    `json:"true_labels,omitempty"`
	DataSource     string   `json:"data_source"`
	ID             string   `json:"id"`
}

// Options returns the answer texts shown for single-select rendering.
func (t *Trial) Options() []string {
	if len(t.AnswersNoLabel) > 0 {
		return t.AnswersNoLabel
	}
	return t.Answers
}

// IsCorrect reports whether the option at idx carries a true label.
func (t *Trial) IsCorrect(idx int) bool {
	if idx < 0 || idx >= len(t.TrueLabels) {
		return false
	}
	return t.TrueLabels[idx] == 1
}
