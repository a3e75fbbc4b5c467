package sink

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

const (
	bodyFont     = "body"
	coreFont     = "Helvetica"
	headerSize   = 14
	stampSize    = 9
	contentSize  = 11
	contentLineH = 6.5
)

// pdfRenderer lays out one post per page with a header on every page.
type pdfRenderer struct {
	fontPath string
}

func (r pdfRenderer) render(b *workflow.Batch, w io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.SetTitle(fmt.Sprintf("Account %s RedNote Content", b.AccountID), true)
	doc.SetCreator("rednotebot", true)

	family := coreFont
	text := doc.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		doc.AddUTF8Font(bodyFont, "", r.fontPath)
		if err := doc.Error(); err != nil {
			return fmt.Errorf("load font %s: %w", r.fontPath, err)
		}
		family = bodyFont
		text = func(s string) string { return s }
	}

	title := fmt.Sprintf("Account %s (%s) - %s", b.AccountID, b.Persona.Name, b.CreatedAt.Format("January 02, 2006"))
	stamp := "Generated at: " + b.CreatedAt.Format("15:04:05")

	doc.SetHeaderFunc(func() {
		doc.SetFont(family, "", headerSize)
		doc.SetTextColor(0x2C, 0x3E, 0x50)
		doc.CellFormat(0, 9, text(title), "", 1, "C", false, 0, "")
		doc.SetFont(family, "", stampSize)
		doc.SetTextColor(0x7F, 0x8C, 0x8D)
		doc.CellFormat(0, 5, text(stamp), "", 1, "R", false, 0, "")
		doc.Ln(6)
	})

	for _, p := range b.Posts {
		doc.AddPage()
		doc.SetFont(family, "", contentSize)
		doc.SetTextColor(0, 0, 0)
		body := fmt.Sprintf("%d. %s", p.Number, strings.TrimSpace(p.Content))
		doc.MultiCell(0, contentLineH, text(body), "", "L", false)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("encode pdf: %w", err)
	}
	return nil
}
