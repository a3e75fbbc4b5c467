// Package prompt provides the content briefs and fallback posts used for generation.
package prompt

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Strategy selects which briefs a batch is built from.
type Strategy int

const (
	// Random picks one brief uniformly.
	Random Strategy = iota
	// SequentialAll returns the whole bank in order.
	SequentialAll
)

func (s Strategy) String() string {
	switch s {
	case Random:
		return "random"
	case SequentialAll:
		return "sequential-all"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Brief is one content archetype from the bank.
type Brief struct {
	Index int
	Text  string
}

// Rand is the randomness source used by the Random strategy.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// Config holds the contents of a bank.
type Config struct {
	Briefs     []string
	Fallbacks  []string
	StyleGuide string
	Rand       Rand // optional, defaults to math/rand/v2
}

// Bank is a static ordered collection of briefs plus the fallback posts.
type Bank struct {
	briefs     []Brief
	fallbacks  []string
	styleGuide string

	mu  sync.Mutex
	rnd Rand
}

// NewBank creates a bank. Both briefs and fallbacks must be non-empty.
func NewBank(cfg Config) (*Bank, error) {
	if len(cfg.Briefs) == 0 {
		return nil, fmt.Errorf("prompt bank has no briefs")
	}
	if len(cfg.Fallbacks) == 0 {
		return nil, fmt.Errorf("prompt bank has no fallback posts")
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = defaultRand{}
	}

	briefs := make([]Brief, len(cfg.Briefs))
	for i, text := range cfg.Briefs {
		briefs[i] = Brief{Index: i, Text: text}
	}

	return &Bank{
		briefs:     briefs,
		fallbacks:  append([]string(nil), cfg.Fallbacks...),
		styleGuide: cfg.StyleGuide,
		rnd:        rnd,
	}, nil
}

// Pick returns the briefs for a batch under the given strategy.
func (b *Bank) Pick(s Strategy) []Brief {
	switch s {
	case SequentialAll:
		out := make([]Brief, len(b.briefs))
		copy(out, b.briefs)
		return out
	default:
		b.mu.Lock()
		i := b.rnd.IntN(len(b.briefs))
		b.mu.Unlock()
		return []Brief{b.briefs[i]}
	}
}

// Briefs returns every brief in order.
func (b *Bank) Briefs() []Brief {
	return b.Pick(SequentialAll)
}

// Fallback returns the fallback post for a 0-based batch position.
// The same position always maps to the same entry.
func (b *Bank) Fallback(position int) string {
	n := len(b.fallbacks)
	i := position % n
	if i < 0 {
		i += n
	}
	return b.fallbacks[i]
}

// FallbackCount returns the size of the fallback bank.
func (b *Bank) FallbackCount() int {
	return len(b.fallbacks)
}

// StyleGuide returns the shared style corpus prepended to every system instruction.
func (b *Bank) StyleGuide() string {
	return b.styleGuide
}
