// Package library provides a VecLite-backed searchable archive of generated posts.
package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdul-hamid-achik/veclite"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

const postsCollection = "posts"

// Config holds configuration for the Library.
type Config struct {
	// Path to the VecLite database file (e.g., "data/posts.veclite").
	Path string

	// ConfigPath is the path to veclite.yaml config file (optional).
	// If empty, searches ./veclite.yaml, ~/.veclite/config.yaml.
	ConfigPath string
}

// Library wraps a VecLite collection of generated posts.
type Library struct {
	vecdb *veclite.DB
	coll  *veclite.Collection
}

// Match is one search hit.
type Match struct {
	ID        uint64  `json:"id"`
	BatchID   string  `json:"batch"`
	AccountID string  `json:"account"`
	PersonaID string  `json:"persona"`
	Number    int     `json:"number"`
	Content   string  `json:"content"`
	Score     float32 `json:"score"`
}

// New opens (or creates) the post library.
func New(cfg Config) (*Library, error) {
	slog.Debug("opening post library", "path", cfg.Path, "config_path", cfg.ConfigPath)

	vecliteCfg, err := veclite.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load veclite config: %w", err)
	}

	embedder, err := veclite.NewEmbedderFromConfig(vecliteCfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vecdb, err := veclite.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open veclite db: %w", err)
	}

	coll, err := vecdb.CreateCollection(postsCollection,
		veclite.WithDimension(embedder.Dimension()),
		veclite.WithDistanceType(veclite.DistanceCosine),
		veclite.WithHNSW(16, 200),
		veclite.WithTextIndex("content", "account", "persona"),
		veclite.WithEmbedder(embedder),
	)
	if err != nil {
		// Collection might already exist
		coll, err = vecdb.GetCollection(postsCollection)
		if err != nil {
			vecdb.Close()
			return nil, fmt.Errorf("get collection: %w", err)
		}
	}

	slog.Info("post library ready", "path", cfg.Path, "provider", vecliteCfg.Embedder.Provider, "posts", coll.Count())
	return &Library{vecdb: vecdb, coll: coll}, nil
}

// Close closes the VecLite database.
func (l *Library) Close() error {
	if l.vecdb != nil {
		return l.vecdb.Close()
	}
	return nil
}

// IndexBatch adds the batch's generated posts. Fallback posts are skipped
// since they are the same static text every time.
func (l *Library) IndexBatch(ctx context.Context, b *workflow.Batch) (int, error) {
	n := 0
	for _, p := range b.Posts {
		if p.Fallback {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := l.coll.InsertText(p.Content, postPayload(b.ID, b.AccountID, b.Persona.ID, p)); err != nil {
			return n, fmt.Errorf("index post %d of batch %s: %w", p.Number, b.ID, err)
		}
		n++
	}
	if n > 0 {
		if err := l.vecdb.Sync(); err != nil {
			return n, fmt.Errorf("sync library: %w", err)
		}
	}
	return n, nil
}

// IndexPost adds one stored post outside of a live batch.
func (l *Library) IndexPost(batchID, accountID, personaID string, p workflow.Post) error {
	if _, err := l.coll.InsertText(p.Content, postPayload(batchID, accountID, personaID, p)); err != nil {
		return fmt.Errorf("index post %d of batch %s: %w", p.Number, batchID, err)
	}
	return nil
}

// Search finds posts similar to the query text.
func (l *Library) Search(ctx context.Context, query string, k int) ([]Match, error) {
	results, err := l.coll.SearchText(query, veclite.TopK(k))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]Match, 0, len(results))
	for _, r := range results {
		out = append(out, matchFromRecord(r.Record.ID, r.Score, r.Record.Content, r.Record.Payload))
	}
	return out, nil
}

// Count returns the number of indexed posts.
func (l *Library) Count() int {
	return l.coll.Count()
}

// Stats returns statistics about the collection.
func (l *Library) Stats() veclite.CollectionStats {
	return l.coll.Stats()
}

// Sync persists pending changes to disk.
func (l *Library) Sync() error {
	return l.vecdb.Sync()
}

func postPayload(batchID, accountID, personaID string, p workflow.Post) map[string]any {
	return map[string]any{
		"batch":   batchID,
		"account": accountID,
		"persona": personaID,
		"number":  p.Number,
		"content": p.Content,
	}
}

func matchFromRecord(id uint64, score float32, content string, payload map[string]any) Match {
	m := Match{ID: id, Score: score}

	if payload != nil {
		m.BatchID, _ = payload["batch"].(string)
		m.AccountID, _ = payload["account"].(string)
		m.PersonaID, _ = payload["persona"].(string)
		m.Content, _ = payload["content"].(string)
		switch n := payload["number"].(type) {
		case int:
			m.Number = n
		case int64:
			m.Number = int(n)
		case float64:
			m.Number = int(n)
		}
	}

	// Fall back to Content field for text
	if m.Content == "" {
		m.Content = content
	}
	return m
}
