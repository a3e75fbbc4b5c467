package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

var (
	// ErrInvalidName is returned for names that are not artifact file names.
	ErrInvalidName = errors.New("invalid artifact name")
	// ErrNotFound is returned when an artifact does not exist.
	ErrNotFound = errors.New("artifact not found")
)

// FileConfig holds configuration for a FileSink.
type FileConfig struct {
	// Dir is the output directory (e.g., "Growth").
	Dir string
	// FontPath is an optional TTF with CJK glyphs for the PDF body.
	FontPath string
}

// FileSink writes a PDF and a plain-text mirror per account per day.
type FileSink struct {
	dir string
	pdf pdfRenderer
}

// NewFileSink creates a file-backed sink.
func NewFileSink(cfg FileConfig) *FileSink {
	return &FileSink{
		dir: cfg.Dir,
		pdf: pdfRenderer{fontPath: cfg.FontPath},
	}
}

// Dir returns the output directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// Write renders both artifacts. Each file is replaced atomically.
func (s *FileSink) Write(ctx context.Context, b *workflow.Batch) (*Result, error) {
	result := &Result{Batch: b}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return result, &RenderError{Batch: b, Op: "create output dir", Err: err}
	}

	pdfName := ArtifactName(b.AccountID, b.CreatedAt, KindPDF)
	err := writeFileAtomic(filepath.Join(s.dir, pdfName), func(w io.Writer) error {
		return s.pdf.render(b, w)
	})
	if err != nil {
		return result, &RenderError{Batch: b, Op: "pdf", Err: err}
	}

	textName := ArtifactName(b.AccountID, b.CreatedAt, KindText)
	err = writeFileAtomic(filepath.Join(s.dir, textName), func(w io.Writer) error {
		_, err := w.Write(RenderText(b))
		return err
	})
	if err != nil {
		return result, &RenderError{Batch: b, Op: "text", Err: err}
	}

	for _, name := range []string{pdfName, textName} {
		a, err := s.stat(name)
		if err != nil {
			return result, &RenderError{Batch: b, Op: "stat", Err: err}
		}
		result.Artifacts = append(result.Artifacts, a)
	}

	slog.Info("batch rendered", "batch", b.ID, "pdf", pdfName, "text", textName)
	return result, nil
}

// List returns artifacts newest first, optionally limited to one account.
func (s *FileSink) List(accountID string) ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	var out []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		acct, _, _, ok := ParseArtifactName(e.Name())
		if !ok || (accountID != "" && acct != accountID) {
			continue
		}
		a, err := s.stat(e.Name())
		if err != nil {
			slog.Warn("skipping unreadable artifact", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Modified.Equal(out[j].Modified) {
			return out[i].Modified.After(out[j].Modified)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Resolve returns the path of an existing artifact. Names that are not
// artifact file names are rejected, which also rules out path traversal.
func (s *FileSink) Resolve(name string) (Artifact, error) {
	if _, _, _, ok := ParseArtifactName(name); !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	a, err := s.stat(name)
	if errors.Is(err, os.ErrNotExist) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return a, err
}

// ReadText parses a text mirror by name.
func (s *FileSink) ReadText(name string) (*TextDocument, error) {
	a, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != KindText {
		return nil, fmt.Errorf("%w: %s is not a text file", ErrInvalidName, name)
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return ParseText(data)
}

func (s *FileSink) stat(name string) (Artifact, error) {
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	acct, date, kind, _ := ParseArtifactName(name)
	return Artifact{
		Name:      name,
		Path:      path,
		Kind:      kind,
		AccountID: acct,
		Date:      date,
		Size:      info.Size(),
		Modified:  info.ModTime(),
	}, nil
}

// writeFileAtomic renders into memory, writes a temp file beside path and
// renames it over path.
func writeFileAtomic(path string, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}
