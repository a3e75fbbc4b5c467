package sink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

var (
	headerRule = strings.Repeat("=", 60)
	postRule   = strings.Repeat("-", 60)
)

// RenderText produces the plain-text mirror of a batch.
func RenderText(b *workflow.Batch) []byte {
	var buf bytes.Buffer
	buf.WriteString("小红书每日内容 / RedNote Daily Content\n")
	fmt.Fprintf(&buf, "账户 Account: %s | 人设 Persona: %s\n", b.AccountID, b.Persona.Name)
	fmt.Fprintf(&buf, "日期 Date: %s\n", b.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&buf, "时间 Time: %s\n", b.CreatedAt.Format("15:04:05"))
	buf.WriteString(headerRule + "\n\n")

	for _, p := range b.Posts {
		fmt.Fprintf(&buf, "%d. %s\n\n", p.Number, p.Content)
		buf.WriteString(postRule + "\n\n")
	}
	return buf.Bytes()
}

// TextPost is one post read back from a text mirror.
type TextPost struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// TextDocument is a parsed text mirror.
type TextDocument struct {
	Header []string   `json:"header"`
	Posts  []TextPost `json:"posts"`
}

// ParseText reads a text mirror written by RenderText.
func ParseText(data []byte) (*TextDocument, error) {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")

	head, body, ok := strings.Cut(s, headerRule+"\n")
	if !ok {
		return nil, fmt.Errorf("missing header rule")
	}

	doc := &TextDocument{}
	for _, line := range strings.Split(strings.TrimSpace(head), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			doc.Header = append(doc.Header, line)
		}
	}

	for _, chunk := range strings.Split(body, "\n"+postRule+"\n") {
		chunk = strings.Trim(chunk, "\n")
		if chunk == "" {
			continue
		}
		num, content, ok := strings.Cut(chunk, ". ")
		if !ok {
			return nil, fmt.Errorf("malformed post: %q", truncateForError(chunk))
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return nil, fmt.Errorf("malformed post number %q: %w", num, err)
		}
		doc.Posts = append(doc.Posts, TextPost{Number: n, Content: content})
	}
	return doc, nil
}

func truncateForError(s string) string {
	return workflow.Truncate(s, 40)
}
