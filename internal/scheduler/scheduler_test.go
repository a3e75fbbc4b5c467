package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/rednotebot/internal/sink"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

func TestHealth_SetHealthy(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("test", "all good")

	status := h.GetStatus("test")
	assert.True(t, status.Healthy)
	assert.Equal(t, "all good", status.Message)
	assert.Nil(t, status.LastError)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
	assert.WithinDuration(t, time.Now(), status.LastSuccess, time.Second)
}

func TestHealth_SetUnhealthy(t *testing.T) {
	h := NewHealth()

	err := assert.AnError
	h.SetUnhealthy("test", err)

	status := h.GetStatus("test")
	assert.False(t, status.Healthy)
	assert.Equal(t, err, status.LastError)
	assert.Equal(t, err.Error(), status.Message)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
}

func TestHealth_GetStatus_NotFound(t *testing.T) {
	h := NewHealth()

	status := h.GetStatus("nonexistent")
	assert.Nil(t, status)
}

func TestHealth_GetAllStatuses(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("comp1", "ok")
	h.SetHealthy("comp2", "ok")
	h.SetUnhealthy("comp3", assert.AnError)

	statuses := h.GetAllStatuses()
	assert.Len(t, statuses, 3)
	assert.True(t, statuses["comp1"].Healthy)
	assert.True(t, statuses["comp2"].Healthy)
	assert.False(t, statuses["comp3"].Healthy)
}

func TestHealth_IsOverallHealthy(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("comp1", "ok")
		h.SetHealthy("comp2", "ok")

		assert.True(t, h.IsOverallHealthy())
	})

	t.Run("one unhealthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("comp1", "ok")
		h.SetUnhealthy("comp2", assert.AnError)

		assert.False(t, h.IsOverallHealthy())
	})

	t.Run("empty", func(t *testing.T) {
		h := NewHealth()
		assert.True(t, h.IsOverallHealthy())
	})
}

func TestHealth_Report(t *testing.T) {
	h := NewHealth()
	h.SetHealthy(ComponentName, "scheduled")
	h.SetUnhealthy("account:C", assert.AnError)

	r := h.Report()
	assert.False(t, r.Healthy)
	assert.Len(t, r.Components, 2)
	assert.Equal(t, assert.AnError.Error(), r.Components["account:C"].Message)
}

type fakeApp struct {
	mu    sync.Mutex
	ids   []string
	fail  map[string]bool
	calls []string
	modes []workflow.Mode
}

func (f *fakeApp) AccountIDs() []string { return f.ids }

func (f *fakeApp) Generate(ctx context.Context, id string, mode workflow.Mode) (*sink.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	f.modes = append(f.modes, mode)
	if f.fail[id] {
		return nil, errors.New("render failure")
	}
	return &sink.Result{Batch: &workflow.Batch{
		AccountID: id,
		Posts:     []workflow.Post{{Number: 1}, {Number: 2, Fallback: true}},
	}}, nil
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New(Config{Spec: "every day", Generator: &fakeApp{}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "every day")
}

func TestScheduler_RunOnce(t *testing.T) {
	app := &fakeApp{ids: []string{"A", "B", "C"}, fail: map[string]bool{"B": true}}
	s, err := New(Config{Spec: "0 17 * * *", Mode: workflow.ModeDaily, Generator: app})
	require.NoError(t, err)

	ok := s.RunOnce(context.Background())
	assert.Equal(t, 2, ok)
	assert.Equal(t, []string{"A", "B", "C"}, app.calls)
	assert.Equal(t, []workflow.Mode{workflow.ModeDaily, workflow.ModeDaily, workflow.ModeDaily}, app.modes)

	h := s.Health()
	assert.True(t, h.GetStatus("account:A").Healthy)
	assert.Equal(t, "2 posts, 1 fallback", h.GetStatus("account:A").Message)
	assert.False(t, h.GetStatus("account:B").Healthy)
	assert.True(t, h.GetStatus(ComponentName).Healthy)
	assert.False(t, h.IsOverallHealthy())
}

func TestScheduler_RunOnce_AllFail(t *testing.T) {
	app := &fakeApp{ids: []string{"A", "B"}, fail: map[string]bool{"A": true, "B": true}}
	s, err := New(Config{Spec: "0 17 * * *", Generator: app})
	require.NoError(t, err)

	assert.Equal(t, 0, s.RunOnce(context.Background()))
	assert.False(t, s.Health().GetStatus(ComponentName).Healthy)
}

func TestScheduler_Run_StopsOnCancel(t *testing.T) {
	s, err := New(Config{Spec: "0 17 * * *", Generator: &fakeApp{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
