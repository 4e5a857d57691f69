package trials

import (
	"testing"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	good := models.Trial{
		ID:         "ours_1",
		Story:      "Sally puts the marble in the basket.",
		Question:   "Where will Sally look?",
		Answers:    []string{"basket (Correct Answer)", "box"},
		TrueLabels: []int{1, 0},
	}

	t.Run("clean file", func(t *testing.T) {
		assert.Empty(t, Inspect([]models.Trial{good}, 1))
	})

	t.Run("problems", func(t *testing.T) {
		noStory := good
		noStory.ID = "ours_2"
		noStory.Story = " "

		unmarked := good
		unmarked.ID = "ours_3"
		unmarked.TrueLabels = []int{0, 0}

		single := good
		single.ID = "ours_4"
		single.Answers = []string{"basket"}

		issues := Inspect([]models.Trial{good, good, noStory, unmarked, single}, 12)
		require.Len(t, issues, 5)
		assert.Equal(t, -1, issues[0].Index)
		assert.Equal(t, "trial 1 (ours_1): duplicate id, first seen at trial 0", issues[1].String())
		assert.Equal(t, "missing story", issues[2].Problem)
		assert.Equal(t, "no answer is marked correct", issues[3].Problem)
		assert.Equal(t, "has 1 answers, need at least 2", issues[4].Problem)
	})
}
