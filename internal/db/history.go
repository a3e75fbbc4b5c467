package db

import (
	"context"
	"fmt"
	"time"
)

// RecordBatchParams is a batch row plus its posts.
type RecordBatchParams struct {
	Batch CreateBatchParams
	Posts []CreatePostParams
}

// RecordBatch stores a batch and its posts in one transaction.
func (s *Store) RecordBatch(ctx context.Context, arg RecordBatchParams) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.Queries.WithTx(tx)
	if err := q.CreateBatch(ctx, arg.Batch); err != nil {
		return fmt.Errorf("insert batch %s: %w", arg.Batch.ID, err)
	}
	for _, p := range arg.Posts {
		p.BatchID = arg.Batch.ID
		if err := q.CreatePost(ctx, p); err != nil {
			return fmt.Errorf("insert post %d: %w", p.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Summary is the dashboard's headline numbers.
type Summary struct {
	TotalBatches  int64 `json:"total_batches"`
	TotalPosts    int64 `json:"total_posts"`
	FallbackPosts int64 `json:"fallback_posts"`
	Accounts      int64 `json:"active_accounts"`
	Today         int64 `json:"today"`
	ThisWeek      int64 `json:"this_week"`
	ThisMonth     int64 `json:"this_month"`
}

// GetSummary counts posts overall and for the day, week and month ending at now.
// The day starts at local midnight; week and month are rolling 7 and 30 days.
func (s *Store) GetSummary(ctx context.Context, now time.Time) (Summary, error) {
	totals, err := s.CountTotals(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count totals: %w", err)
	}

	sum := Summary{
		TotalBatches:  totals.Batches,
		TotalPosts:    totals.Posts,
		FallbackPosts: totals.FallbackPosts,
		Accounts:      totals.Accounts,
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windows := []struct {
		since time.Time
		dst   *int64
	}{
		{midnight, &sum.Today},
		{now.AddDate(0, 0, -7), &sum.ThisWeek},
		{now.AddDate(0, 0, -30), &sum.ThisMonth},
	}
	for _, w := range windows {
		n, err := s.CountPostsSince(ctx, w.since.Unix())
		if err != nil {
			return Summary{}, fmt.Errorf("count posts since %s: %w", w.since.Format(time.DateOnly), err)
		}
		*w.dst = n
	}
	return sum, nil
}
