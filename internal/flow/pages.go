package flow

import (
	"fmt"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

type PageKind string

const (
	PageConsent       PageKind = "consent"
	PageInstructions  PageKind = "instructions"
	PageComprehension PageKind = "comprehension"
	PageTrial         PageKind = "trial"
	PageExit          PageKind = "exit"
)

// Gate decides whether the cursor may leave page p in the forward direction.
type Gate func(v *Variant, p Page, s *models.Session) error

// Page describes one entry of the fixed page sequence.
type Page struct {
	Index int      `json:"index"`
	Kind  PageKind `json:"kind"`
	// Number is 1-based within its kind: instruction page n or trial page n.
	Number int  `json:"number,omitempty"`
	Gate   Gate `json:"-"`
}

// ElementID is the DOM id of the rendered page.
func (p Page) ElementID() string {
	switch p.Kind {
	case PageTrial:
		return fmt.Sprintf("trial-page-%d", p.Number)
	case PageInstructions:
		return fmt.Sprintf("instructions-page-%d", p.Number)
	default:
		return string(p.Kind) + "-page"
	}
}

// BuildSequence lays out the pages of v in presentation order.
func BuildSequence(v *Variant) []Page {
	pages := make([]Page, 0, v.TotalPages())
	add := func(kind PageKind, number int, gate Gate) {
		pages = append(pages, Page{Index: len(pages), Kind: kind, Number: number, Gate: gate})
	}

	add(PageConsent, 0, consentGate)
	for i := range v.Instructions {
		add(PageInstructions, i+1, openGate)
	}
	add(PageComprehension, 0, comprehensionGate)
	for n := 1; n <= v.TrialCount; n++ {
		add(PageTrial, n, trialGate)
	}
	add(PageExit, 0, exitGate)

	return pages
}

func openGate(*Variant, Page, *models.Session) error {
	return nil
}

func consentGate(_ *Variant, p Page, s *models.Session) error {
	if !s.Consent {
		return newGateError(p, ErrConsentRequired, "Please check the consent box to continue.")
	}
	return nil
}

func comprehensionGate(v *Variant, p Page, s *models.Session) error {
	var wrong []string
	for _, q := range v.Comprehension {
		if got, _ := s.Response(q.ID); got != q.Expected {
			wrong = append(wrong, q.ID)
		}
	}
	if len(wrong) > 0 {
		return newGateError(p, ErrComprehensionFailed, "Please answer the comprehension test questions correctly.", wrong...)
	}
	return nil
}

func trialGate(v *Variant, p Page, s *models.Session) error {
	var missing []string
	for _, name := range TrialInputNames(v, p.Number) {
		if _, ok := s.Response(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return newGateError(p, ErrPageIncomplete, "Please answer all questions on this page before continuing.", missing...)
	}
	return nil
}

func exitGate(_ *Variant, p Page, _ *models.Session) error {
	return newGateError(p, ErrAtLastPage, "This is the last page. Please submit your answers.")
}
