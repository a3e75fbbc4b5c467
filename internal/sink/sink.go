// Package sink persists or returns finished batches.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

// ErrRenderFailure matches any RenderError.
var ErrRenderFailure = errors.New("render failure")

// RenderError reports a file-system or encoding failure while producing an
// artifact. The batch is kept so callers can still return it.
type RenderError struct {
	Batch *workflow.Batch
	Op    string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRenderFailure) match.
func (e *RenderError) Is(target error) bool { return target == ErrRenderFailure }

// Artifact is one durable file produced for a batch.
type Artifact struct {
	Name      string    `json:"filename"`
	Path      string    `json:"-"`
	Kind      string    `json:"type"`
	AccountID string    `json:"account"`
	Date      string    `json:"date"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
}

// Result is what a sink hands back to the caller.
type Result struct {
	Batch     *workflow.Batch `json:"batch"`
	Artifacts []Artifact      `json:"artifacts"`
}

// Artifact returns the artifact of the given kind, if any.
func (r *Result) Artifact(kind string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}

// Sink receives completed batches.
type Sink interface {
	Write(ctx context.Context, batch *workflow.Batch) (*Result, error)
}
