package db

import (
	"context"
)

const createBatch = `-- name: CreateBatch :exec
INSERT INTO batches (
    id, account_id, persona_id, persona_name, mode,
    post_count, fallback_count, pdf_file, text_file, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateBatchParams struct {
	ID            string
	AccountID     string
	PersonaID     string
	PersonaName   string
	Mode          string
	PostCount     int64
	FallbackCount int64
	PdfFile       string
	TextFile      string
	CreatedAt     int64
}

func (q *Queries) CreateBatch(ctx context.Context, arg CreateBatchParams) error {
	_, err := q.db.ExecContext(ctx, createBatch,
		arg.ID,
		arg.AccountID,
		arg.PersonaID,
		arg.PersonaName,
		arg.Mode,
		arg.PostCount,
		arg.FallbackCount,
		arg.PdfFile,
		arg.TextFile,
		arg.CreatedAt,
	)
	return err
}

const createPost = `-- name: CreatePost :exec
INSERT INTO posts (batch_id, number, content, fallback, generated_at)
VALUES (?, ?, ?, ?, ?)
`

type CreatePostParams struct {
	BatchID     string
	Number      int64
	Content     string
	Fallback    bool
	GeneratedAt int64
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) error {
	_, err := q.db.ExecContext(ctx, createPost,
		arg.BatchID,
		arg.Number,
		arg.Content,
		arg.Fallback,
		arg.GeneratedAt,
	)
	return err
}

const getBatch = `-- name: GetBatch :one
SELECT id, account_id, persona_id, persona_name, mode, post_count, fallback_count, pdf_file, text_file, created_at
FROM batches
WHERE id = ?
`

func (q *Queries) GetBatch(ctx context.Context, id string) (Batch, error) {
	row := q.db.QueryRowContext(ctx, getBatch, id)
	var i Batch
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.PersonaID,
		&i.PersonaName,
		&i.Mode,
		&i.PostCount,
		&i.FallbackCount,
		&i.PdfFile,
		&i.TextFile,
		&i.CreatedAt,
	)
	return i, err
}

const listPostsByBatch = `-- name: ListPostsByBatch :many
SELECT id, batch_id, number, content, fallback, generated_at
FROM posts
WHERE batch_id = ?
ORDER BY number
`

func (q *Queries) ListPostsByBatch(ctx context.Context, batchID string) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPostsByBatch, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Post
	for rows.Next() {
		var i Post
		if err := rows.Scan(
			&i.ID,
			&i.BatchID,
			&i.Number,
			&i.Content,
			&i.Fallback,
			&i.GeneratedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRecentPosts = `-- name: ListRecentPosts :many
SELECT p.id, p.batch_id, b.account_id, b.persona_id, b.persona_name, b.mode,
       p.number, p.content, p.fallback, p.generated_at
FROM posts p
JOIN batches b ON b.id = p.batch_id
WHERE (?1 = '' OR b.account_id = ?1)
ORDER BY p.generated_at DESC, p.id DESC
LIMIT ?2
`

type ListRecentPostsParams struct {
	AccountID string
	Limit     int64
}

type RecentPost struct {
	ID          int64
	BatchID     string
	AccountID   string
	PersonaID   string
	PersonaName string
	Mode        string
	Number      int64
	Content     string
	Fallback    bool
	GeneratedAt int64
}

func (q *Queries) ListRecentPosts(ctx context.Context, arg ListRecentPostsParams) ([]RecentPost, error) {
	rows, err := q.db.QueryContext(ctx, listRecentPosts, arg.AccountID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecentPost
	for rows.Next() {
		var i RecentPost
		if err := rows.Scan(
			&i.ID,
			&i.BatchID,
			&i.AccountID,
			&i.PersonaID,
			&i.PersonaName,
			&i.Mode,
			&i.Number,
			&i.Content,
			&i.Fallback,
			&i.GeneratedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAllPosts = `-- name: ListAllPosts :many
SELECT p.id, p.batch_id, b.account_id, b.persona_id, b.persona_name, b.mode,
       p.number, p.content, p.fallback, p.generated_at
FROM posts p
JOIN batches b ON b.id = p.batch_id
ORDER BY p.generated_at, p.batch_id, p.number
`

func (q *Queries) ListAllPosts(ctx context.Context) ([]RecentPost, error) {
	rows, err := q.db.QueryContext(ctx, listAllPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecentPost
	for rows.Next() {
		var i RecentPost
		if err := rows.Scan(
			&i.ID,
			&i.BatchID,
			&i.AccountID,
			&i.PersonaID,
			&i.PersonaName,
			&i.Mode,
			&i.Number,
			&i.Content,
			&i.Fallback,
			&i.GeneratedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPostsSince = `-- name: CountPostsSince :one
SELECT COUNT(*) FROM posts WHERE generated_at >= ?
`

func (q *Queries) CountPostsSince(ctx context.Context, since int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPostsSince, since)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTotals = `-- name: CountTotals :one
SELECT
    (SELECT COUNT(*) FROM batches) AS batches,
    (SELECT COUNT(*) FROM posts) AS posts,
    (SELECT COUNT(*) FROM posts WHERE fallback = 1) AS fallback_posts,
    (SELECT COUNT(DISTINCT account_id) FROM batches) AS accounts
`

type CountTotalsRow struct {
	Batches       int64
	Posts         int64
	FallbackPosts int64
	Accounts      int64
}

func (q *Queries) CountTotals(ctx context.Context) (CountTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, countTotals)
	var i CountTotalsRow
	err := row.Scan(&i.Batches, &i.Posts, &i.FallbackPosts, &i.Accounts)
	return i, err
}

const countByAccount = `-- name: CountByAccount :many
SELECT account_id,
       COUNT(*) AS batches,
       COALESCE(SUM(post_count), 0) AS posts,
       COALESCE(SUM(fallback_count), 0) AS fallback_posts,
       MAX(created_at) AS last_run
FROM batches
GROUP BY account_id
ORDER BY account_id
`

type CountByAccountRow struct {
	AccountID     string
	Batches       int64
	Posts         int64
	FallbackPosts int64
	LastRun       int64
}

func (q *Queries) CountByAccount(ctx context.Context) ([]CountByAccountRow, error) {
	rows, err := q.db.QueryContext(ctx, countByAccount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountByAccountRow
	for rows.Next() {
		var i CountByAccountRow
		if err := rows.Scan(
			&i.AccountID,
			&i.Batches,
			&i.Posts,
			&i.FallbackPosts,
			&i.LastRun,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
