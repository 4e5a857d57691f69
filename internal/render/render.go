// Package render turns session state into the survey markup. Every function is
// a pure mapping from data to HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
)

type Renderer struct {
	document *template.Template
	errPage  *template.Template
	thankYou *template.Template
	trials   *template.Template
}

func New() (*Renderer, error) {
	parse := func(name, body string) (*template.Template, error) {
		t, err := template.New("layout").Parse(layoutTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.New(name + "-body").Parse(body); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return t, nil
	}

	r := &Renderer{}
	var err error
	if r.document, err = parse("document", documentTemplate); err != nil {
		return nil, err
	}
	if r.errPage, err = parse("error", errorTemplate); err != nil {
		return nil, err
	}
	if r.thankYou, err = parse("thank-you", thankYouTemplate); err != nil {
		return nil, err
	}
	if r.trials, err = parse("trial-list", `{{template "trials" .}}`); err != nil {
		return nil, err
	}
	return r, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

type option struct {
	ID      string
	Value   string
	Label   string
	Checked bool
}

type likertGroup struct {
	Name      string
	Statement string
	Options   []option
}

type choiceGroup struct {
	Name    string
	Options []option
}

type trialPage struct {
	ElementID string
	Number    int
	Hidden    bool
	Trial     models.Trial
	Likert    []likertGroup
	Choice    *choiceGroup
}

type comprehensionItem struct {
	Name    string
	Prompt  string
	Options []option
}

type pageBlock struct {
	ElementID string
	Kind      flow.PageKind
	Number    int
	Hidden    bool
	Text      string
	TrialPage *trialPage
}

type documentData struct {
	Title            string
	Action           string
	Notice           string
	ProgressValue    string
	ProgressWidth    string
	ConsentText      string
	Consent          bool
	InstructionCount int
	Comprehension    []comprehensionItem
	Demographics     models.Demographics
	Pages            []pageBlock
	IsFirst          bool
	IsLast           bool
	CanAdvance       bool
}

// TrialPages renders one hidden .page block per trial, with the recorded
// selections pre-checked.
func (r *Renderer) TrialPages(v *flow.Variant, trials []models.Trial, responses map[string]string) (template.HTML, error) {
	pages := make([]*trialPage, 0, len(trials))
	for i := range trials {
		pages = append(pages, buildTrialPage(v, i+1, trials[i], responses, true))
	}

	var buf bytes.Buffer
	if err := r.trials.ExecuteTemplate(&buf, "trial-list-body", pages); err != nil {
		return "", fmt.Errorf("render trial pages: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Document renders the full survey with only the current page visible.
// action is the form target, notice an optional alert for the last failed step.
func (r *Renderer) Document(w io.Writer, view *services.SessionView, action, notice string) error {
	v := view.Definition
	data := documentData{
		Title:            v.Title,
		Action:           action,
		Notice:           notice,
		ProgressValue:    strconv.FormatFloat(view.Progress, 'f', 2, 64),
		ProgressWidth:    strconv.FormatFloat(view.Progress, 'f', 2, 64) + "%",
		ConsentText:      v.ConsentText,
		Consent:          view.Consent,
		InstructionCount: len(v.Instructions),
		Demographics:     view.Demographics,
		IsFirst:          view.IsFirst,
		IsLast:           view.IsLast,
		CanAdvance:       view.CanAdvance,
	}

	for _, q := range v.Comprehension {
		item := comprehensionItem{Name: q.ID, Prompt: q.Prompt}
		for _, value := range []string{"true", "false"} {
			label := "True"
			if value == "false" {
				label = "False"
			}
			item.Options = append(item.Options, option{
				ID:      q.ID + "-" + value,
				Value:   value,
				Label:   label,
				Checked: view.Responses[q.ID] == value,
			})
		}
		data.Comprehension = append(data.Comprehension, item)
	}

	for _, p := range view.Pages {
		block := pageBlock{
			ElementID: p.ElementID(),
			Kind:      p.Kind,
			Number:    p.Number,
			Hidden:    p.Index != view.Cursor,
		}
		switch p.Kind {
		case flow.PageInstructions:
			block.Text = v.Instructions[p.Number-1]
		case flow.PageTrial:
			trial, ok := view.Session.Trial(p.Number)
			if !ok {
				return fmt.Errorf("session %s has no trial %d", view.ID, p.Number)
			}
			block.TrialPage = buildTrialPage(v, p.Number, *trial, view.Responses, block.Hidden)
		}
		data.Pages = append(data.Pages, block)
	}

	return r.document.ExecuteTemplate(w, "document-body", data)
}

// ErrorPage renders the fatal page shown when the study cannot start.
func (r *Renderer) ErrorPage(w io.Writer, message string) error {
	return r.errPage.ExecuteTemplate(w, "error-body", message)
}

func (r *Renderer) ThankYou(w io.Writer) error {
	return r.thankYou.ExecuteTemplate(w, "thank-you-body", nil)
}

func buildTrialPage(v *flow.Variant, n int, trial models.Trial, responses map[string]string, hidden bool) *trialPage {
	page := &trialPage{
		ElementID: fmt.Sprintf("trial-page-%d", n),
		Number:    n,
		Hidden:    hidden,
		Trial:     trial,
	}

	if v.Mode == flow.AnswerModeChoice {
		name := flow.ChoiceInputName(n)
		group := &choiceGroup{Name: name}
		for i, text := range trial.Options() {
			value := strconv.Itoa(i)
			group.Options = append(group.Options, option{
				ID:      fmt.Sprintf("%s-%d", name, i),
				Value:   value,
				Label:   text,
				Checked: responses[name] == value,
			})
		}
		page.Choice = group
		return page
	}

	for q, statement := range v.LikertStatements {
		name := flow.LikertInputName(n, q+1)
		group := likertGroup{Name: name, Statement: statement}
		for point := 1; point <= flow.LikertPoints; point++ {
			value := strconv.Itoa(point)
			group.Options = append(group.Options, option{
				ID:      fmt.Sprintf("%s-%d", name, point),
				Value:   value,
				Label:   flow.LikertLabels[point-1],
				Checked: responses[name] == value,
			})
		}
		page.Likert = append(page.Likert, group)
	}
	return page
}
