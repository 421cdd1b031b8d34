package domain

import (
	"math/rand/v2"
	"sync"

	"github.com/samber/lo"

	"roulette-lab/errors"
)

// Roulette partitions participants into randomized groups.
// The shuffle is the only randomized step; everything after it is
// deterministic given the shuffled order.
// Safe for concurrent draws: one instance is shared between the weekly
// scheduler and on-demand triggers.
type Roulette struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRoulette() *Roulette {
	return NewSeededRoulette(rand.Uint64(), rand.Uint64())
}

// NewSeededRoulette builds a roulette with a fixed seed, for reproducible draws.
func NewSeededRoulette(seed1, seed2 uint64) *Roulette {
	return &Roulette{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Draw partitions participants into groups of roughly targetSize members.
//
// Guarantees: every returned group has at least 2 members, and the union of
// all groups is exactly the input set. Fewer than 2 participants yield no
// groups and no error; the caller decides how to report that.
func (r *Roulette) Draw(participants []Participant, targetSize int) ([]Group, error) {
	if targetSize < 2 {
		return nil, errors.ErrInvalidGroupSize
	}
	if len(participants) < 2 {
		return nil, nil
	}

	shuffled := make([]Participant, len(participants))
	copy(shuffled, participants)

	// rand.Rand is not goroutine-safe; draws can run concurrently.
	r.mu.Lock()
	r.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	r.mu.Unlock()

	// Below 4 people any split at targetSize >= 2 would strand someone.
	if len(shuffled) <= 3 {
		return repairGroups([]Group{{Members: shuffled}}), nil
	}

	total := len(shuffled)
	remainder := total % targetSize

	// A remainder of 2 or more is spread by widening leading groups to
	// targetSize+1. A remainder of 1 is left to the repair pass, which
	// dissolves the stranded cell instead of creating a group of one.
	widened := 0
	if remainder >= 2 {
		widened = min(remainder, total/targetSize)
	}

	var groups []Group
	idx := 0
	for i := 0; i < widened; i++ {
		groups = append(groups, Group{Members: clone(shuffled[idx : idx+targetSize+1])})
		idx += targetSize + 1
	}
	for _, chunk := range lo.Chunk(shuffled[idx:], targetSize) {
		// lo.Chunk shares the shuffled backing array; the repair pass
		// appends to groups, so each cell needs its own storage.
		groups = append(groups, Group{Members: clone(chunk)})
	}

	return repairGroups(groups), nil
}

// repairGroups is the final safety net, run on every path: any cell of size 1
// is dissolved and its member redistributed round-robin over the remaining
// cells. Idempotent; guarantees no returned group has fewer than 2 members.
func repairGroups(groups []Group) []Group {
	var kept []Group
	var strays []Participant
	for _, g := range groups {
		if g.Size() == 1 {
			strays = append(strays, g.Members...)
			continue
		}
		kept = append(kept, g)
	}

	if len(kept) == 0 {
		if len(strays) >= 2 {
			return []Group{{Members: strays}}
		}
		return nil
	}

	for i, p := range strays {
		g := &kept[i%len(kept)]
		g.Members = append(g.Members, p)
	}
	return kept
}

func clone(members []Participant) []Participant {
	out := make([]Participant, len(members))
	copy(out, members)
	return out
}
