package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/rednotebot/internal/account"
	"github.com/abdulachik/rednotebot/internal/catalog"
	"github.com/abdulachik/rednotebot/internal/config"
	"github.com/abdulachik/rednotebot/internal/db"
	"github.com/abdulachik/rednotebot/internal/generator"
	"github.com/abdulachik/rednotebot/internal/library"
	"github.com/abdulachik/rednotebot/internal/notify"
	"github.com/abdulachik/rednotebot/internal/prompt"
	"github.com/abdulachik/rednotebot/internal/sink"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Store    *db.Store
	Catalog  *catalog.Catalog
	Accounts *account.Registry
	Workflow *workflow.Workflow
	Sink     sink.Sink
	Files    *sink.FileSink   // nil in memory mode
	Memory   *sink.MemorySink // nil in file mode
	Library  *library.Library // nil unless LIBRARY_PATH is set
	Notifier notify.Notifier

	now func() time.Time
}

type options struct {
	generator    generator.Generator
	hasGenerator bool
	now          func() time.Time
	sleep        func(context.Context, time.Duration) error
	rand         prompt.Rand
}

// Option overrides a dependency, mainly for tests.
type Option func(*options)

// WithGenerator replaces the configured provider. nil means no credential.
func WithGenerator(g generator.Generator) Option {
	return func(o *options) {
		o.generator = g
		o.hasGenerator = true
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSleep replaces the daily-mode spacing wait.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithRand replaces the prompt selection randomness.
func WithRand(r prompt.Rand) Option {
	return func(o *options) { o.rand = r }
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	personas, err := cat.Registry()
	if err != nil {
		return nil, fmt.Errorf("build persona registry: %w", err)
	}
	bank, err := cat.Bank(o.rand)
	if err != nil {
		return nil, fmt.Errorf("build prompt bank: %w", err)
	}

	// Create database connection
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	gen := o.generator
	if !o.hasGenerator {
		gen, err = generator.New(generator.Config{
			Provider: cfg.Provider,
			APIKey:   cfg.APIKey(),
			BaseURL:  providerBaseURL(cfg),
			Model:    providerModel(cfg),
			Timeout:  cfg.GeneratorTimeout,
		})
		switch {
		case errors.Is(err, generator.ErrMissingCredential):
			slog.Warn("no generator credential configured", "env", cfg.APIKeyVar())
			gen = nil
		case err != nil:
			store.Close()
			return nil, fmt.Errorf("create generator: %w", err)
		}
	}

	a := &App{
		Config:  cfg,
		Store:   store,
		Catalog: cat,
		Workflow: workflow.New(workflow.Config{
			Generator: gen,
			Bank:      bank,
			Spacing:   cfg.CallSpacing,
			Now:       o.now,
			Sleep:     o.sleep,
		}),
		now: o.now,
	}

	var storage account.Storage
	if cfg.FileMode() {
		storage = account.NewFileStorage(cfg.AccountsFile)
		a.Files = sink.NewFileSink(sink.FileConfig{Dir: cfg.OutputDir, FontPath: cfg.PDFFontPath})
		a.Sink = a.Files
	} else {
		storage = account.NewMemoryStorage()
		a.Memory = sink.NewMemorySink(sink.DefaultMemoryLimit)
		a.Sink = a.Memory
	}

	a.Accounts = account.NewRegistry(account.Config{
		Storage:    storage,
		Personas:   personas,
		AccountIDs: cat.AccountIDs(),
		Defaults:   cat.DefaultAssignments(),
	})

	notifiers := notify.Multi{notify.NewLogNotifier(nil)}
	if cfg.NotifyWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.NotifyWebhookURL))
	}
	a.Notifier = notifiers

	if cfg.LibraryPath != "" {
		lib, err := library.New(library.Config{Path: cfg.LibraryPath, ConfigPath: cfg.VecLiteConfig})
		if err != nil {
			slog.Warn("post library disabled", "path", cfg.LibraryPath, "error", err)
		} else {
			a.Library = lib
		}
	}

	slog.Debug("app ready",
		"catalog", cat.Name,
		"deploy_mode", cfg.DeployMode,
		"provider", cfg.Provider,
		"credential", gen != nil,
	)

	return a, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile != "" {
		c, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("load catalog file: %w", err)
		}
		return c, nil
	}
	name := cfg.Catalog
	if name == "" {
		name = catalog.Default
	}
	c, err := catalog.Load(name)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

func providerBaseURL(cfg *config.Config) string {
	if cfg.Provider == config.ProviderAnthropic {
		return ""
	}
	return cfg.DeepSeekBaseURL
}

func providerModel(cfg *config.Config) string {
	if cfg.Provider == config.ProviderAnthropic {
		return cfg.AnthropicModel
	}
	return cfg.DeepSeekModel
}

// AccountIDs returns the fixed account set.
func (a *App) AccountIDs() []string {
	return a.Accounts.AccountIDs()
}

// DefaultMode returns the configured generation mode.
func (a *App) DefaultMode() workflow.Mode {
	if m, err := workflow.ParseMode(a.Config.GenerationMode); err == nil {
		return m
	}
	return workflow.ModeSingle
}

// Generate runs the workflow for one account and hands the batch to the sink.
// A degraded batch is not an error. A render failure is returned together
// with the result so the batch is not lost.
func (a *App) Generate(ctx context.Context, accountID string, mode workflow.Mode) (*sink.Result, error) {
	if mode == "" {
		mode = a.DefaultMode()
	}

	p, err := a.Accounts.Resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}

	batch, err := a.Workflow.Run(ctx, workflow.Request{AccountID: accountID, Persona: p, Mode: mode})
	if err != nil {
		return nil, err
	}

	result, renderErr := a.Sink.Write(ctx, batch)
	if result == nil {
		result = &sink.Result{Batch: batch}
	}
	if renderErr != nil {
		slog.Error("render failed", "batch", batch.ID, "account", accountID, "error", renderErr)
		a.notify(ctx, "render failed", fmt.Sprintf("account %s batch %s: %v", accountID, batch.ID, renderErr))
	}

	if err := a.record(ctx, result); err != nil {
		slog.Warn("failed to record batch history", "batch", batch.ID, "error", err)
	}

	if a.Library != nil {
		if n, err := a.Library.IndexBatch(ctx, batch); err != nil {
			slog.Warn("failed to index batch", "batch", batch.ID, "indexed", n, "error", err)
		}
	}

	if err := batch.Err(); err != nil {
		a.notify(ctx, "generation degraded", fmt.Sprintf("account %s (%s) batch %s: %v", accountID, p.Name, batch.ID, err))
	}

	return result, renderErr
}

func (a *App) record(ctx context.Context, r *sink.Result) error {
	b := r.Batch
	params := db.RecordBatchParams{
		Batch: db.CreateBatchParams{
			ID:            b.ID,
			AccountID:     b.AccountID,
			PersonaID:     b.Persona.ID,
			PersonaName:   b.Persona.Name,
			Mode:          string(b.Mode),
			PostCount:     int64(len(b.Posts)),
			FallbackCount: int64(b.FallbackCount()),
			CreatedAt:     b.CreatedAt.Unix(),
		},
	}
	if art, ok := r.Artifact(sink.KindPDF); ok {
		params.Batch.PdfFile = art.Name
	}
	if art, ok := r.Artifact(sink.KindText); ok {
		params.Batch.TextFile = art.Name
	}
	for _, p := range b.Posts {
		params.Posts = append(params.Posts, db.CreatePostParams{
			Number:      int64(p.Number),
			Content:     p.Content,
			Fallback:    p.Fallback,
			GeneratedAt: p.GeneratedAt.Unix(),
		})
	}
	return a.Store.RecordBatch(ctx, params)
}

func (a *App) notify(ctx context.Context, subject, body string) {
	if err := a.Notifier.Send(ctx, notify.Notification{Subject: subject, Body: body}); err != nil {
		slog.Warn("failed to send notification", "subject", subject, "error", err)
	}
}

// Now returns the app clock's current time.
func (a *App) Now() time.Time {
	return a.now()
}

// Close closes all resources.
func (a *App) Close() error {
	var errs []error
	if a.Library != nil {
		errs = append(errs, a.Library.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
