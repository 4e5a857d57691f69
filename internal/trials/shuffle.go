package trials

import (
	"math/rand/v2"
	"sync"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
)

// Shuffler permutes trials in place.
type Shuffler interface {
	Shuffle(trials []models.Trial)
}

// FisherYates walks from the last element down to 1 and swaps each with a
// uniformly chosen element at or before it.
type FisherYates struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewFisherYates(src rand.Source) *FisherYates {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &FisherYates{rng: rand.New(src)}
}

func (f *FisherYates) Shuffle(trials []models.Trial) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(trials) - 1; i > 0; i-- {
		j := f.rng.IntN(i + 1)
		trials[i], trials[j] = trials[j], trials[i]
	}
}
