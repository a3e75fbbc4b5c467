package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/rednotebot/internal/persona"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

var testDay = time.Date(2026, 1, 2, 17, 0, 5, 0, time.Local)

func testBatch(account string, n int) *workflow.Batch {
	b := &workflow.Batch{
		ID:        "01JGQ7Z5XW6M2Q3F0R8T9V1ABC",
		AccountID: account,
		Persona:   persona.Persona{ID: "forex_gold_trader", Name: "江鸽点金"},
		Mode:      workflow.ModeDaily,
		CreatedAt: testDay,
	}
	for i := 1; i <= n; i++ {
		b.Posts = append(b.Posts, workflow.Post{
			Number:      i,
			Content:     "Gold day " + strings.Repeat("x", i) + "\n#XAUUSD #trading",
			GeneratedAt: testDay,
			Fallback:    i%2 == 0,
		})
	}
	return b
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "AccountA_RedNote_Content_20260102.pdf", ArtifactName("A", testDay, KindPDF))

	acct, date, kind, ok := ParseArtifactName("AccountC_RedNote_Content_20260102.txt")
	require.True(t, ok)
	assert.Equal(t, "C", acct)
	assert.Equal(t, "20260102", date)
	assert.Equal(t, KindText, kind)

	for _, bad := range []string{"../etc/passwd", "AccountA_RedNote_Content_2026.txt", "notes.txt", "AccountA_RedNote_Content_20260102.txt/.."} {
		_, _, _, ok := ParseArtifactName(bad)
		assert.False(t, ok, bad)
	}
}

func TestRenderText(t *testing.T) {
	b := testBatch("A", 2)
	got := string(RenderText(b))

	want := "小红书每日内容 / RedNote Daily Content\n" +
		"账户 Account: A | 人设 Persona: 江鸽点金\n" +
		"日期 Date: 2026-01-02\n" +
		"时间 Time: 17:00:05\n" +
		strings.Repeat("=", 60) + "\n\n" +
		"1. " + b.Posts[0].Content + "\n\n" +
		strings.Repeat("-", 60) + "\n\n" +
		"2. " + b.Posts[1].Content + "\n\n" +
		strings.Repeat("-", 60) + "\n\n"
	assert.Equal(t, want, got)
}

func TestParseText(t *testing.T) {
	b := testBatch("B", 4)

	doc, err := ParseText(RenderText(b))
	require.NoError(t, err)

	require.Len(t, doc.Header, 4)
	assert.Contains(t, doc.Header[1], "江鸽点金")
	require.Len(t, doc.Posts, 4)
	for i, p := range doc.Posts {
		assert.Equal(t, b.Posts[i].Number, p.Number)
		assert.Equal(t, b.Posts[i].Content, p.Content)
	}

	_, err = ParseText([]byte("no header here"))
	assert.Error(t, err)
}

func TestFileSink_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("writes pdf and text", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "Growth")
		s := NewFileSink(FileConfig{Dir: dir})
		b := testBatch("A", 3)

		res, err := s.Write(ctx, b)
		require.NoError(t, err)
		assert.Same(t, b, res.Batch)
		require.Len(t, res.Artifacts, 2)

		pdfArt, ok := res.Artifact(KindPDF)
		require.True(t, ok)
		assert.Equal(t, "AccountA_RedNote_Content_20260102.pdf", pdfArt.Name)
		assert.Greater(t, pdfArt.Size, int64(0))

		f, r, err := pdfreader.Open(pdfArt.Path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, 3, r.NumPage())

		txtArt, ok := res.Artifact(KindText)
		require.True(t, ok)
		data, err := os.ReadFile(txtArt.Path)
		require.NoError(t, err)
		assert.Equal(t, RenderText(b), data)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("same day overwrites", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFileSink(FileConfig{Dir: dir})

		_, err := s.Write(ctx, testBatch("A", 10))
		require.NoError(t, err)
		_, err = s.Write(ctx, testBatch("A", 1))
		require.NoError(t, err)

		list, err := s.List("A")
		require.NoError(t, err)
		assert.Len(t, list, 2)

		doc, err := s.ReadText("AccountA_RedNote_Content_20260102.txt")
		require.NoError(t, err)
		assert.Len(t, doc.Posts, 1)
	})

	t.Run("missing font is a render failure", func(t *testing.T) {
		s := NewFileSink(FileConfig{Dir: t.TempDir(), FontPath: "/nonexistent/font.ttf"})
		b := testBatch("A", 1)

		res, err := s.Write(ctx, b)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRenderFailure)

		var rerr *RenderError
		require.True(t, errors.As(err, &rerr))
		assert.Same(t, b, rerr.Batch)
		assert.Same(t, b, res.Batch)
	})

	t.Run("unwritable dir is a render failure", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		s := NewFileSink(FileConfig{Dir: filepath.Join(blocker, "Growth")})
		_, err := s.Write(ctx, testBatch("A", 1))
		assert.ErrorIs(t, err, ErrRenderFailure)
	})
}

func TestFileSink_ListAndResolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileSink(FileConfig{Dir: dir})

	_, err := s.Write(ctx, testBatch("A", 1))
	require.NoError(t, err)
	_, err = s.Write(ctx, testBatch("B", 1))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644))

	all, err := s.List("")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	onlyB, err := s.List("B")
	require.NoError(t, err)
	require.Len(t, onlyB, 2)
	for _, a := range onlyB {
		assert.Equal(t, "B", a.AccountID)
	}

	_, err = s.Resolve("../../secret.txt")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Resolve("AccountE_RedNote_Content_20260102.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ReadText("AccountA_RedNote_Content_20260102.pdf")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFileSink_ListMissingDir(t *testing.T) {
	s := NewFileSink(FileConfig{Dir: filepath.Join(t.TempDir(), "never-created")})

	list, err := s.List("")
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink(2)

	first := testBatch("A", 1)
	res, err := s.Write(ctx, first)
	require.NoError(t, err)
	assert.Same(t, first, res.Batch)
	assert.Empty(t, res.Artifacts)

	second := testBatch("A", 2)
	third := testBatch("A", 3)
	_, _ = s.Write(ctx, second)
	_, _ = s.Write(ctx, third)

	recent := s.Recent("A")
	require.Len(t, recent, 2)
	assert.Same(t, third, recent[0])
	assert.Same(t, second, recent[1])

	latest, ok := s.Latest("A")
	require.True(t, ok)
	assert.Same(t, third, latest)

	_, ok = s.Latest("B")
	assert.False(t, ok)
}
