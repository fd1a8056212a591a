package compose

import (
	"math/rand/v2"
	"sync"
)

// Picker chooses one phrase from a fixed pool. It is the only source of
// randomness in reply rendering.
type Picker interface {
	Pick(pool []string) string
}

// RandomPicker picks uniformly. It is safe for concurrent use.
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker uses src when non-nil, the global generator otherwise.
func NewRandomPicker(src rand.Source) *RandomPicker {
	p := &RandomPicker{}
	if src != nil {
		p.rng = rand.New(src)
	}
	return p
}

func (p *RandomPicker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	if p.rng == nil {
		return pool[rand.IntN(len(pool))]
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.IntN(len(pool))]
}

// FixedPicker always returns the phrase at Index, wrapping around.
type FixedPicker struct {
	Index int
}

func (p FixedPicker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	i := p.Index % len(pool)
	if i < 0 {
		i += len(pool)
	}
	return pool[i]
}
