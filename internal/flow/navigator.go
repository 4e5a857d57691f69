package flow

import (
	apperrors "github.com/SAP-F-2025/story-survey-service/internal/errors"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

// Navigator is the page-cursor state machine over a variant's page sequence.
// It holds no per-session state; everything it mutates lives on the session.
type Navigator struct {
	variant *Variant
	pages   []Page
}

func NewNavigator(v *Variant) *Navigator {
	return &Navigator{
		variant: v,
		pages:   BuildSequence(v),
	}
}

func (n *Navigator) Variant() *Variant {
	return n.variant
}

func (n *Navigator) Pages() []Page {
	return n.pages
}

func (n *Navigator) TotalPages() int {
	return len(n.pages)
}

// Current returns the page under the session's cursor, clamped to the sequence.
func (n *Navigator) Current(s *models.Session) Page {
	return n.pages[n.clamp(s.Cursor)]
}

func (n *Navigator) IsFirst(s *models.Session) bool {
	return n.clamp(s.Cursor) == 0
}

func (n *Navigator) IsLast(s *models.Session) bool {
	return n.clamp(s.Cursor) == len(n.pages)-1
}

// CheckGate evaluates the current page's gate without moving the cursor.
func (n *Navigator) CheckGate(s *models.Session) error {
	p := n.Current(s)
	if p.Gate == nil {
		return nil
	}
	return p.Gate(n.variant, p, s)
}

func (n *Navigator) CanAdvance(s *models.Session) bool {
	return n.CheckGate(s) == nil
}

// Next advances the cursor by one page when the current gate holds.
// On a gate failure the cursor is left unchanged.
func (n *Navigator) Next(s *models.Session) error {
	s.Cursor = n.clamp(s.Cursor)
	if err := n.CheckGate(s); err != nil {
		return err
	}
	if s.Cursor >= len(n.pages)-1 {
		return newGateError(n.Current(s), ErrAtLastPage, "This is the last page. Please submit your answers.")
	}
	s.Cursor++
	return nil
}

// Previous moves the cursor back by one page. Recorded responses are kept.
func (n *Navigator) Previous(s *models.Session) error {
	s.Cursor = n.clamp(s.Cursor)
	if s.Cursor == 0 {
		return newGateError(n.Current(s), ErrAtFirstPage, "You are already on the first page.")
	}
	s.Cursor--
	return nil
}

// Progress is the percentage shown by the progress bar for the session.
func (n *Navigator) Progress(s *models.Session) float64 {
	return Progress(n.clamp(s.Cursor), len(n.pages))
}

// Record validates and stores a set of selections. Either every entry is
// stored or none is.
func (n *Navigator) Record(s *models.Session, answers map[string]string) error {
	var errs apperrors.ValidationErrors
	for name, value := range answers {
		if verr := ValidateInput(n.variant, s, name, value); verr != nil {
			errs = append(errs, *verr)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	for name, value := range answers {
		s.SetResponse(name, value)
	}
	return nil
}

// UnansweredTrials lists trial page numbers whose groups are not all answered.
func (n *Navigator) UnansweredTrials(s *models.Session) []int {
	var pending []int
	for _, p := range n.pages {
		if p.Kind != PageTrial {
			continue
		}
		if trialGate(n.variant, p, s) != nil {
			pending = append(pending, p.Number)
		}
	}
	return pending
}

func (n *Navigator) clamp(cursor int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > len(n.pages)-1 {
		return len(n.pages) - 1
	}
	return cursor
}

// Progress returns 100*(cursor+1)/total.
func Progress(cursor, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(cursor+1) / float64(total)
}
