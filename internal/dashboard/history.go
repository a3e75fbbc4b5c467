package dashboard

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/abdulachik/rednotebot/internal/account"
	"github.com/abdulachik/rednotebot/internal/db"
)

const maxRecentLimit = 200

type postView struct {
	ID          int64     `json:"id"`
	BatchID     string    `json:"batch"`
	AccountID   string    `json:"account"`
	PersonaID   string    `json:"persona"`
	PersonaName string    `json:"persona_name"`
	Mode        string    `json:"mode"`
	Number      int64     `json:"number"`
	Content     string    `json:"content"`
	Fallback    bool      `json:"fallback"`
	GeneratedAt time.Time `json:"generated_at"`
}

func toPostViews(rows []db.RecentPost) []postView {
	out := make([]postView, 0, len(rows))
	for _, r := range rows {
		out = append(out, postView{
			ID:          r.ID,
			BatchID:     r.BatchID,
			AccountID:   r.AccountID,
			PersonaID:   r.PersonaID,
			PersonaName: r.PersonaName,
			Mode:        r.Mode,
			Number:      r.Number,
			Content:     r.Content,
			Fallback:    r.Fallback,
			GeneratedAt: time.Unix(r.GeneratedAt, 0),
		})
	}
	return out
}

func (s *Server) recentPosts(c *fiber.Ctx) error {
	accountID := c.Query("account")
	if accountID != "" && !s.app.Accounts.Valid(accountID) {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("%w: %q", account.ErrInvalidAccount, accountID))
	}

	limit := c.QueryInt("limit", s.app.Config.RecentLimit)
	if limit <= 0 || limit > maxRecentLimit {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("limit must be between 1 and %d", maxRecentLimit))
	}

	rows, err := s.app.Store.ListRecentPosts(c.UserContext(), db.ListRecentPostsParams{
		AccountID: accountID,
		Limit:     int64(limit),
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"posts": toPostViews(rows)})
}

func (s *Server) statsSummary(c *fiber.Ctx) error {
	sum, err := s.app.Store.GetSummary(c.UserContext(), s.app.Now())
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{
		"summary":        sum,
		"total_accounts": len(s.app.AccountIDs()),
	})
}

type accountStats struct {
	AccountID     string     `json:"account"`
	Persona       string     `json:"persona"`
	Batches       int64      `json:"batches"`
	Posts         int64      `json:"posts"`
	FallbackPosts int64      `json:"fallback_posts"`
	LastRun       *time.Time `json:"last_run"`
}

// accountStatsList reports every account, including those that never ran.
func (s *Server) accountStatsList(c *fiber.Ctx) ([]accountStats, error) {
	rows, err := s.app.Store.CountByAccount(c.UserContext())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]db.CountByAccountRow, len(rows))
	for _, r := range rows {
		byID[r.AccountID] = r
	}

	assigned, err := s.app.Accounts.Load(c.UserContext())
	if err != nil {
		return nil, err
	}

	out := make([]accountStats, 0, len(s.app.AccountIDs()))
	for _, id := range s.app.AccountIDs() {
		st := accountStats{AccountID: id, Persona: assigned[id]}
		if r, found := byID[id]; found {
			st.Batches = r.Batches
			st.Posts = r.Posts
			st.FallbackPosts = r.FallbackPosts
			if r.LastRun > 0 {
				t := time.Unix(r.LastRun, 0)
				st.LastRun = &t
			}
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Server) analytics(c *fiber.Ctx) error {
	stats, err := s.accountStatsList(c)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"accounts": stats})
}

func (s *Server) export(c *fiber.Ctx) error {
	switch format := c.Params("format"); format {
	case "csv":
		rows, err := s.app.Store.ListAllPosts(c.UserContext())
		if err != nil {
			return err
		}
		data, err := postsCSV(rows)
		if err != nil {
			return err
		}
		c.Attachment("rednote_export.csv")
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(data)

	case "json":
		rows, err := s.app.Store.ListAllPosts(c.UserContext())
		if err != nil {
			return err
		}
		sum, err := s.app.Store.GetSummary(c.UserContext(), s.app.Now())
		if err != nil {
			return err
		}
		stats, err := s.accountStatsList(c)
		if err != nil {
			return err
		}
		return ok(c, fiber.Map{
			"summary":  sum,
			"accounts": stats,
			"posts":    toPostViews(rows),
		})

	default:
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("unsupported format: %q", format))
	}
}

func postsCSV(rows []db.RecentPost) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"generated_at", "account", "persona", "mode", "batch", "number", "fallback", "content"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			time.Unix(r.GeneratedAt, 0).Format(time.RFC3339),
			r.AccountID,
			r.PersonaID,
			r.Mode,
			r.BatchID,
			strconv.FormatInt(r.Number, 10),
			strconv.FormatBool(r.Fallback),
			r.Content,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
