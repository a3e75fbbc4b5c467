// Package workflow turns briefs into posts, degrading to fallback content
// whenever the generator fails.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/abdulachik/rednotebot/internal/generator"
	"github.com/abdulachik/rednotebot/internal/persona"
	"github.com/abdulachik/rednotebot/internal/prompt"
)

var (
	// ErrMissingCredential means no generator is configured. Nothing was called.
	ErrMissingCredential = generator.ErrMissingCredential
	// ErrGenerationDegraded is informational: the batch used fallback content.
	ErrGenerationDegraded = errors.New("generation degraded: fallback content used")
)

// Post is one generated record.
type Post struct {
	Number      int       `json:"number"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
	Fallback    bool      `json:"fallback"`
}

// Batch is the ordered output of one workflow run against one account.
type Batch struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account"`
	Persona   persona.Persona `json:"persona"`
	Mode      Mode            `json:"mode"`
	Posts     []Post          `json:"posts"`
	CreatedAt time.Time       `json:"created_at"`
}

// FallbackCount returns how many posts came from the fallback bank.
func (b *Batch) FallbackCount() int {
	n := 0
	for _, p := range b.Posts {
		if p.Fallback {
			n++
		}
	}
	return n
}

// Degraded reports whether any post is fallback content.
func (b *Batch) Degraded() bool {
	return b.FallbackCount() > 0
}

// Err returns ErrGenerationDegraded for degraded batches, nil otherwise.
func (b *Batch) Err() error {
	if b.Degraded() {
		return fmt.Errorf("%w: %d of %d posts", ErrGenerationDegraded, b.FallbackCount(), len(b.Posts))
	}
	return nil
}

// Request describes one workflow invocation.
type Request struct {
	AccountID string
	Persona   persona.Persona
	Mode      Mode
}

// Config holds dependencies for a Workflow.
type Config struct {
	Generator generator.Generator // nil means no credential is configured
	Bank      *prompt.Bank
	// Spacing is the pause between generator calls in daily mode.
	Spacing time.Duration
	// Now and Sleep default to the wall clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Workflow runs generation batches.
type Workflow struct {
	gen     generator.Generator
	bank    *prompt.Bank
	spacing time.Duration
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a workflow.
func New(cfg Config) *Workflow {
	w := &Workflow{
		gen:     cfg.Generator,
		bank:    cfg.Bank,
		spacing: cfg.Spacing,
		now:     cfg.Now,
		sleep:   cfg.Sleep,
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.sleep == nil {
		w.sleep = sleep
	}
	return w
}

// Bank returns the prompt bank the workflow draws from.
func (w *Workflow) Bank() *prompt.Bank {
	return w.bank
}

// HasGenerator reports whether a generator credential is configured.
func (w *Workflow) HasGenerator() bool {
	return w.gen != nil
}

// Run produces a batch for req. Individual generation failures never abort
// the batch; they are replaced with fallback content. The only error is
// ErrMissingCredential, returned before any call is made.
func (w *Workflow) Run(ctx context.Context, req Request) (*Batch, error) {
	if w.gen == nil {
		return nil, ErrMissingCredential
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeSingle
	}
	s := mode.settings()
	briefs := w.bank.Pick(s.strategy)
	system := SystemInstruction(w.bank.StyleGuide(), req.Persona.Voice, prompt.OutputDiscipline)

	created := w.now()
	batch := &Batch{
		ID:        ulid.MustNew(ulid.Timestamp(created), ulid.DefaultEntropy()).String(),
		AccountID: req.AccountID,
		Persona:   req.Persona,
		Mode:      mode,
		Posts:     make([]Post, 0, len(briefs)),
		CreatedAt: created,
	}

	slog.Info("generating batch",
		"batch", batch.ID,
		"account", req.AccountID,
		"persona", req.Persona.ID,
		"mode", mode,
		"briefs", len(briefs),
	)

	for i, brief := range briefs {
		content, err := w.generate(ctx, system, UserInstruction(brief.Text, prompt.UserSuffix), s)
		if err != nil && errors.Is(err, generator.ErrMissingCredential) && i == 0 {
			return nil, ErrMissingCredential
		}

		post := Post{Number: i + 1}
		if err != nil {
			slog.Warn("generation failed, using fallback",
				"batch", batch.ID,
				"account", req.AccountID,
				"brief", brief.Index,
				"position", i,
				"error", err,
			)
			post.Content = w.bank.Fallback(i)
			post.Fallback = true
		} else {
			post.Content = Truncate(content, s.ceiling)
		}
		post.GeneratedAt = w.now()
		batch.Posts = append(batch.Posts, post)

		if s.spaced && i < len(briefs)-1 {
			if err := w.sleep(ctx, w.spacing); err != nil {
				slog.Debug("spacing interrupted", "error", err)
			}
		}
	}

	slog.Info("batch generated",
		"batch", batch.ID,
		"account", req.AccountID,
		"posts", len(batch.Posts),
		"fallbacks", batch.FallbackCount(),
	)

	return batch, nil
}

func (w *Workflow) generate(ctx context.Context, system, user string, s settings) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := w.gen.Generate(ctx, system, user, generator.WithMaxTokens(s.maxTokens))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", generator.ErrEmptyResponse
	}
	return text, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
