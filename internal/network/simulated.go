package network

import (
	"context"
	"math/rand"
	"sync"

	"github.com/avisanghavi/clout/internal/types"
)

// maxSimulatedMutuals caps how many trusted contacts the simulation attaches to one candidate.
const maxSimulatedMutuals = 3

// SimulatedFinder stands in for a real contact-graph intersection. For each candidate it
// picks k ~ U[1, min(3, |trusted|)] distinct trusted contacts uniformly at random.
// It is safe for concurrent use; two finders built from the same seed produce the same
// evidence for the same sequence of calls.
type SimulatedFinder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedFinder creates a finder drawing from src.
func NewSimulatedFinder(src rand.Source) *SimulatedFinder {
	return &SimulatedFinder{rng: rand.New(src)}
}

// NewSeededFinder creates a finder with a deterministic seed.
func NewSeededFinder(seed int64) *SimulatedFinder {
	return NewSimulatedFinder(rand.NewSource(seed))
}

// FindShared returns the simulated evidence for candidate. Selection order is the evidence order.
func (f *SimulatedFinder) FindShared(_ context.Context, _ types.CandidateProfile, trusted []types.TrustedContact) ([]types.MutualConnectionEvidence, error) {
	if len(trusted) == 0 {
		return nil, nil
	}

	f.mu.Lock()
	k := f.rng.Intn(min(maxSimulatedMutuals, len(trusted))) + 1
	picks := f.rng.Perm(len(trusted))[:k]
	f.mu.Unlock()

	evidence := make([]types.MutualConnectionEvidence, 0, k)
	for _, idx := range picks {
		contact := trusted[idx]
		evidence = append(evidence, types.MutualConnectionEvidence{
			Name:     contact.Name,
			InTNL:    true,
			TNLScore: contact.TrustScore,
		})
	}
	return evidence, nil
}
