package flow

import (
	"fmt"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

type AnswerMode string

const (
	AnswerModeLikert AnswerMode = "likert"
	AnswerModeChoice AnswerMode = "choice"
)

// LikertPoints is the width of every rating scale.
const LikertPoints = 5

var LikertLabels = [LikertPoints]string{"Strongly Disagree", "Disagree", "Neutral", "Agree", "Strongly Agree"}

// ComprehensionQuestion is one true/false item of the screening quiz.
type ComprehensionQuestion struct {
	ID       string
	Prompt   string
	Expected string
}

// Variant declares everything that differs between experiment deployments.
type Variant struct {
	Name             models.Variant
	Title            string
	TrialCount       int
	Mode             AnswerMode
	ConsentText      string
	Instructions     []string
	Comprehension    []ComprehensionQuestion
	LikertStatements []string
}

var likertVariant = &Variant{
	Name:       models.VariantLikert,
	Title:      "Story Evaluation Study",
	TrialCount: 30,
	Mode:       AnswerModeLikert,
	ConsentText: "By checking the box below you confirm that you are at least 18 years old, " +
		"that you have read the study information and that you agree to take part. " +
		"Your responses are anonymous and you may stop at any time.",
	Instructions: []string{
		"In this study you will read short stories. Each story is followed by a question and a list of answer options.",
		"One of the answer options is marked as the correct answer. You do not need to answer the question yourself.",
		"Instead, you will rate each story on three statements using a five-point scale from Strongly Disagree to Strongly Agree.",
		"Before the stories begin there is a short quiz to check that the task is clear. You must answer every quiz question correctly to continue.",
	},
	Comprehension: []ComprehensionQuestion{
		{ID: "comprehension-1", Prompt: "You will read short stories, each followed by a question and answer options.", Expected: "true"},
		{ID: "comprehension-2", Prompt: "You should answer the question about each story yourself.", Expected: "false"},
		{ID: "comprehension-3", Prompt: "You will rate each story on three statements using a five-point scale.", Expected: "true"},
		{ID: "comprehension-4", Prompt: "The answer marked as correct is always unambiguous.", Expected: "false"},
		{ID: "comprehension-5", Prompt: "You may skip a rating if you are unsure.", Expected: "false"},
	},
	LikertStatements: []string{
		"The story is easy to understand.",
		"The question and answer options are relevant and clear in relation to the story.",
		`The "correct" answer to the question is clear and unambiguous.`,
	},
}

var mcqVariant = &Variant{
	Name:       models.VariantMCQ,
	Title:      "Story Comprehension Study",
	TrialCount: 12,
	Mode:       AnswerModeChoice,
	ConsentText: "By checking the box below you confirm that you are at least 18 years old, " +
		"that you have read the study information and that you agree to take part. " +
		"Your responses are anonymous and you may stop at any time.",
	Instructions: []string{
		"In this study you will read short stories. Each story is followed by a question about the characters.",
		"For every story, choose the one answer option you think is correct.",
		"Read each story carefully. Some questions depend on what a character knows or does not know.",
		"Before the stories begin there is a short quiz to check that the task is clear. You must answer every quiz question correctly to continue.",
	},
	Comprehension: []ComprehensionQuestion{
		{ID: "comprehension-1", Prompt: "You will rate how clear each story is on a five-point scale.", Expected: "false"},
		{ID: "comprehension-2", Prompt: "For each story you will choose the answer you think is correct.", Expected: "true"},
		{ID: "comprehension-3", Prompt: "More than one answer can be selected for a question.", Expected: "false"},
		{ID: "comprehension-4", Prompt: "The answer options tell you which one is correct.", Expected: "false"},
		{ID: "comprehension-5", Prompt: "You can continue to the next story without selecting an answer.", Expected: "false"},
	},
}

// LookupVariant returns the built-in definition for name.
func LookupVariant(name models.Variant) (*Variant, error) {
	switch name {
	case models.VariantLikert:
		return likertVariant, nil
	case models.VariantMCQ:
		return mcqVariant, nil
	default:
		return nil, fmt.Errorf("unknown survey variant %q", name)
	}
}

// TotalPages counts consent, instructions, the quiz, every trial and the exit page.
func (v *Variant) TotalPages() int {
	return 1 + len(v.Instructions) + 1 + v.TrialCount + 1
}

// ComprehensionKey maps quiz input names to their expected answer.
func (v *Variant) ComprehensionKey() map[string]string {
	key := make(map[string]string, len(v.Comprehension))
	for _, q := range v.Comprehension {
		key[q.ID] = q.Expected
	}
	return key
}
