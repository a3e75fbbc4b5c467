package workflow

import (
	"fmt"

	"github.com/abdulachik/rednotebot/internal/prompt"
)

// Mode selects the batch shape.
type Mode string

const (
	// ModeSingle produces one high-quality post from a random brief.
	ModeSingle Mode = "single"
	// ModeDaily produces one post per brief in bank order.
	ModeDaily Mode = "daily"
)

// DailyCeiling is the longest post, in characters, kept verbatim in daily mode.
const DailyCeiling = 800

// ParseMode converts a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, ModeDaily:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode: %q (must be 'single' or 'daily')", s)
	}
}

// settings are the per-mode knobs.
type settings struct {
	strategy  prompt.Strategy
	ceiling   int // 0 means unbounded
	maxTokens int
	spaced    bool
}

func (m Mode) settings() settings {
	if m == ModeDaily {
		return settings{strategy: prompt.SequentialAll, ceiling: DailyCeiling, maxTokens: 500, spaced: true}
	}
	return settings{strategy: prompt.Random, maxTokens: 2000}
}
