package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FormatMarkdownReport renders the leaderboard, a per-class breakdown for each
// run and the rejected runs as a markdown document.
func FormatMarkdownReport(board *Leaderboard) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## Leaderboard: %s\n\n", board.Title()))

	if len(board.Entries) == 0 {
		b.WriteString("_No runs were scored._\n\n")
	} else {
		b.WriteString("| # | Team | Run | Macro-F1 | 95% CI | Accuracy |\n")
		b.WriteString("|---|------|-----|----------|--------|----------|\n")
		for _, e := range board.Entries {
			b.WriteString(fmt.Sprintf("| %d | %s | %s | %.4f | %s | %.4f |\n",
				e.Rank, escapeCell(e.Team), escapeCell(e.Run), e.MacroF1, formatInterval(e.CI), e.Report.Accuracy))
		}
		b.WriteString("\n")

		b.WriteString("### Per-class metrics\n\n")
		for _, e := range board.Entries {
			b.WriteString(fmt.Sprintf("#### %s / %s\n\n", escapeCell(e.Team), escapeCell(e.Run)))
			b.WriteString("| Label | Precision | Recall | F1 | Support |\n")
			b.WriteString("|-------|-----------|--------|----|---------|\n")
			for _, l := range e.Report.Labels {
				c := e.Report.Classes[l]
				b.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %d |\n", escapeCell(l), c.Precision, c.Recall, c.F1, c.Support))
			}
			m, wa := e.Report.MacroAvg, e.Report.WeightedAvg
			b.WriteString(fmt.Sprintf("| macro avg | %.4f | %.4f | %.4f | %d |\n", m.Precision, m.Recall, m.F1, m.Support))
			b.WriteString(fmt.Sprintf("| weighted avg | %.4f | %.4f | %.4f | %d |\n\n", wa.Precision, wa.Recall, wa.F1, wa.Support))
		}
	}

	if len(board.Rejections) > 0 {
		b.WriteString("### Rejected runs\n\n")
		b.WriteString("| Team | Run | Reason | Detail |\n")
		b.WriteString("|------|-----|--------|--------|\n")
		for _, r := range board.Rejections {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				escapeCell(r.Team), escapeCell(r.Run), r.Reason, escapeCell(r.Detail)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeHTML(w io.Writer, board *Leaderboard) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdownReport(board)), &body); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(board.Title()), body.String())
	return err
}

func writeJSON(w io.Writer, board *Leaderboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(board)
}
