package service

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RankRandomizer draws the simulated rank improvement. IntN returns a value in [0, n).
type RankRandomizer interface {
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRankRandomizer returns a goroutine-safe PCG source. A zero seed uses the wall clock.
func NewRankRandomizer(seed uint64) RankRandomizer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
