// Package pdf renders a session report. Layout mirrors the report the
// service has always produced: title, metadata line, explanation paragraphs,
// the numbered quiz with lettered options, and the score footer.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/studyai/studyai/internal/model"
)

// Render builds the PDF bytes for an exported session.
func Render(p model.SessionExport) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Arial", "B", 16)
	doc.Cell(0, 10, "Study.AI Session Report")
	doc.Ln(12)

	doc.SetFont("Arial", "", 10)
	meta := fmt.Sprintf("Topic: %s  |  Subtopic: %s  |  Difficulty: %s  |  Generated: %s",
		p.Topic, p.Subtopic, p.Difficulty, p.GeneratedAt)
	doc.MultiCell(0, 6, tr(meta), "", "L", false)
	doc.Ln(6)

	doc.SetFont("Arial", "B", 13)
	doc.Cell(0, 8, "Explanation")
	doc.Ln(9)
	doc.SetFont("Arial", "", 11)
	for _, para := range strings.Split(p.Explanation, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		doc.MultiCell(0, 6, tr(para), "", "L", false)
		doc.Ln(3)
	}
	doc.Ln(5)

	doc.SetFont("Arial", "B", 13)
	doc.Cell(0, 8, fmt.Sprintf("Quiz (Total questions: %d)", len(p.Quiz)))
	doc.Ln(9)

	for i, q := range p.Quiz {
		doc.SetFont("Arial", "B", 11)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q.Question)), "", "L", false)

		doc.SetFont("Arial", "", 11)
		for j, opt := range q.Options {
			label := byte('A' + j%26)
			doc.MultiCell(0, 6, tr(fmt.Sprintf("   %c. %s", label, opt)), "", "L", false)
		}

		if selected, ok := p.Answers[i]; ok {
			doc.MultiCell(0, 6, tr("   Your answer: "+selected), "", "L", false)
		}

		doc.SetFont("Arial", "I", 10)
		doc.MultiCell(0, 6, tr("   Correct Answer: "+q.Answer), "", "L", false)
		doc.SetFont("Arial", "", 10)
		doc.MultiCell(0, 6, tr("   Explanation: "+q.Explanation), "", "L", false)
		doc.Ln(4)
	}

	doc.Ln(6)
	doc.SetFont("Arial", "B", 12)
	doc.Cell(0, 8, fmt.Sprintf("Score (raw): %d  |  Weighted: %d", p.ScoreRaw, p.ScoreWeighted))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
