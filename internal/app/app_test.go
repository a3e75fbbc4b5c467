package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/rednotebot/internal/account"
	"github.com/abdulachik/rednotebot/internal/config"
	"github.com/abdulachik/rednotebot/internal/db"
	"github.com/abdulachik/rednotebot/internal/generator"
	"github.com/abdulachik/rednotebot/internal/sink"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(ctx context.Context, system, user string, opts ...generator.Option) (string, error) {
	return s.text, s.err
}

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

var fixedNow = time.Date(2026, 1, 2, 17, 0, 0, 0, time.Local)

func testConfig(t *testing.T, mode string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DeployMode:     mode,
		GenerationMode: "single",
		Catalog:        "trading",
		AccountsFile:   filepath.Join(dir, "accounts.json"),
		OutputDir:      filepath.Join(dir, "Growth"),
		DatabasePath:   filepath.Join(dir, "history.db"),
		Provider:       config.ProviderDeepSeek,
		RecentLimit:    20,
	}
	return cfg
}

func newTestApp(t *testing.T, mode string, gen generator.Generator) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(t, mode),
		WithGenerator(gen),
		WithClock(func() time.Time { return fixedNow }),
		WithSleep(func(context.Context, time.Duration) error { return nil }),
		WithRand(firstRand{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew(t *testing.T) {
	t.Run("file mode", func(t *testing.T) {
		a := newTestApp(t, config.DeployFile, stubGenerator{text: "ok"})
		assert.NotNil(t, a.Files)
		assert.Nil(t, a.Memory)
		assert.Equal(t, []string{"A", "B", "C", "D", "E"}, a.AccountIDs())
	})

	t.Run("memory mode", func(t *testing.T) {
		a := newTestApp(t, config.DeployMemory, stubGenerator{text: "ok"})
		assert.Nil(t, a.Files)
		assert.NotNil(t, a.Memory)
	})

	t.Run("unknown catalog", func(t *testing.T) {
		cfg := testConfig(t, config.DeployMemory)
		cfg.Catalog = "crypto"
		_, err := New(context.Background(), cfg)
		assert.Error(t, err)
	})

	t.Run("missing credential is deferred", func(t *testing.T) {
		a, err := New(context.Background(), testConfig(t, config.DeployMemory))
		require.NoError(t, err)
		defer a.Close()

		_, err = a.Generate(context.Background(), "A", workflow.ModeSingle)
		assert.ErrorIs(t, err, workflow.ErrMissingCredential)
	})
}

func TestApp_Generate_FileMode(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.DeployFile, stubGenerator{text: "黄金日内交易复盘 #XAUUSD"})

	res, err := a.Generate(ctx, "A", workflow.ModeDaily)
	require.NoError(t, err)

	require.Len(t, res.Batch.Posts, 10)
	assert.Equal(t, "forex_gold_trader", res.Batch.Persona.ID)
	assert.False(t, res.Batch.Degraded())

	pdfArt, ok := res.Artifact(sink.KindPDF)
	require.True(t, ok)
	assert.Equal(t, "AccountA_RedNote_Content_20260102.pdf", pdfArt.Name)

	posts, err := a.Store.ListRecentPosts(ctx, db.ListRecentPostsParams{AccountID: "A", Limit: 50})
	require.NoError(t, err)
	assert.Len(t, posts, 10)

	stored, err := a.Store.GetBatch(ctx, res.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, pdfArt.Name, stored.PdfFile)
	assert.Equal(t, "AccountA_RedNote_Content_20260102.txt", stored.TextFile)
}

func TestApp_Generate_FallbackScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.DeployMemory, stubGenerator{err: errors.New("timeout")})

	res, err := a.Generate(ctx, "A", workflow.ModeSingle)
	require.NoError(t, err)

	require.Len(t, res.Batch.Posts, 1)
	post := res.Batch.Posts[0]
	assert.Equal(t, 1, post.Number)
	assert.True(t, post.Fallback)
	assert.Equal(t, a.Catalog.Fallbacks[0], post.Content)

	latest, ok := a.Memory.Latest("A")
	require.True(t, ok)
	assert.Same(t, res.Batch, latest)

	totals, err := a.Store.CountTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.FallbackPosts)
}

func TestApp_Generate_UsesAssignedPersona(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.DeployMemory, stubGenerator{text: "ok"})

	require.NoError(t, a.Accounts.Update(ctx, "B", "astock_analyst"))

	res, err := a.Generate(ctx, "B", "")
	require.NoError(t, err)
	assert.Equal(t, "astock_analyst", res.Batch.Persona.ID)
	assert.Equal(t, workflow.ModeSingle, res.Batch.Mode)
}

func TestApp_Generate_InvalidAccount(t *testing.T) {
	a := newTestApp(t, config.DeployMemory, stubGenerator{text: "ok"})

	_, err := a.Generate(context.Background(), "Z", workflow.ModeSingle)
	assert.ErrorIs(t, err, account.ErrInvalidAccount)
}

func TestApp_Generate_RenderFailureKeepsBatch(t *testing.T) {
	cfg := testConfig(t, config.DeployFile)
	cfg.PDFFontPath = "/nonexistent/font.ttf"

	a, err := New(context.Background(), cfg, WithGenerator(stubGenerator{text: "ok"}), WithRand(firstRand{}))
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Generate(context.Background(), "C", workflow.ModeSingle)
	assert.ErrorIs(t, err, sink.ErrRenderFailure)
	require.NotNil(t, res)
	assert.Len(t, res.Batch.Posts, 1)
}
