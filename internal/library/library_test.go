package library

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

func TestPostPayload(t *testing.T) {
	p := workflow.Post{Number: 3, Content: "黄金日内复盘"}

	payload := postPayload("b1", "A", "forex_gold_trader", p)
	assert.Equal(t, "b1", payload["batch"])
	assert.Equal(t, "A", payload["account"])
	assert.Equal(t, "forex_gold_trader", payload["persona"])
	assert.Equal(t, 3, payload["number"])
	assert.Equal(t, "黄金日内复盘", payload["content"])
}

func TestMatchFromRecord(t *testing.T) {
	t.Run("reads payload", func(t *testing.T) {
		payload := postPayload("b1", "C", "astock_analyst", workflow.Post{Number: 2, Content: "缩量震荡"})

		m := matchFromRecord(42, 0.91, "", payload)
		assert.Equal(t, Match{
			ID:        42,
			BatchID:   "b1",
			AccountID: "C",
			PersonaID: "astock_analyst",
			Number:    2,
			Content:   "缩量震荡",
			Score:     0.91,
		}, m)
	})

	t.Run("numbers decoded as float", func(t *testing.T) {
		m := matchFromRecord(1, 0.5, "", map[string]any{"number": float64(7)})
		assert.Equal(t, 7, m.Number)
	})

	t.Run("falls back to record content", func(t *testing.T) {
		m := matchFromRecord(1, 0.5, "raw text", nil)
		assert.Equal(t, "raw text", m.Content)
	})
}
