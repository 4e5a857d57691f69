package models

import "time"

type Variant string

const (
	VariantLikert Variant = "likert"
	VariantMCQ    Variant = "mcq"
)

// Demographics is the exit survey record. Age is kept as the raw form value.
type Demographics struct {
	Age       string `json:"age" form:"age" validate:"required,age_range"`
	Gender    string `json:"gender" form:"gender" validate:"required"`
	Race      string `json:"race" form:"race" validate:"required"`
	Ethnicity string `json:"ethnicity" form:"ethnicity" validate:"required"`
}

// Session is the per-participant accumulator: identifiers, the shuffled
// trial snapshot, the page cursor and every recorded selection.
type Session struct {
	ID            string  `json:"id"`
	ParticipantID string  `json:"participant_id"`
	StudyID       string  `json:"study_id"`
	Condition     string  `json:"condition"`
	Variant       Variant `json:"variant"`

	Trials []Trial `json:"trials"`

	Cursor       int               `json:"cursor"`
	Consent      bool              `json:"consent"`
	Responses    map[string]string `json:"responses"`
	Demographics Demographics      `json:"demographics"`

	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Response returns the recorded value for an input group.
func (s *Session) Response(name string) (string, bool) {
	if s.Responses == nil {
		return "", false
	}
	v, ok := s.Responses[name]
	return v, ok && v != ""
}

// SetResponse records a selection, replacing any earlier one for the group.
func (s *Session) SetResponse(name, value string) {
	if s.Responses == nil {
		s.Responses = make(map[string]string)
	}
	s.Responses[name] = value
}

// Trial returns the 1-based trial shown on trial page n.
func (s *Session) Trial(n int) (*Trial, bool) {
	if n < 1 || n > len(s.Trials) {
		return nil, false
	}
	return &s.Trials[n-1], true
}
