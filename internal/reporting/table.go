package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/autextification/scorer/internal/models"
	"github.com/mattn/go-runewidth"
)

var tableHeader = []string{"#", "team", "run", "all_metrics", "mf1", "mf1_cinterval"}

func writeTable(w io.Writer, board *Leaderboard) error {
	rows := make([][]string, 0, len(board.Entries))
	for _, e := range board.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.Team,
			e.Run,
			SummarizeReport(e.Report),
			fmt.Sprintf("%.4f", e.MacroF1),
			formatInterval(e.CI),
		})
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if sw := runewidth.StringWidth(cell); sw > widths[i] {
				widths[i] = sw
			}
		}
	}

	total := 0
	for _, wd := range widths {
		total += wd + 2
	}

	var b strings.Builder
	b.WriteString(board.Title())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", total))
	b.WriteString("\n")
	writeTableRow(&b, tableHeader, widths)
	b.WriteString(strings.Repeat("-", total))
	b.WriteString("\n")
	for _, row := range rows {
		writeTableRow(&b, row, widths)
	}
	if len(rows) == 0 {
		b.WriteString("(no runs)\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTableRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i == len(cells)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(padRight(cell, widths[i]))
		b.WriteString("  ")
	}
	b.WriteString("\n")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// SummarizeReport condenses a classification report into one line: accuracy,
// each label's F1 in label order, then the macro and weighted averages. The
// markdown, html and json formats carry the full report.
func SummarizeReport(r models.ClassificationReport) string {
	parts := make([]string, 0, len(r.Labels)+3)
	parts = append(parts, fmt.Sprintf("accuracy=%.4f", r.Accuracy))
	for _, l := range r.Labels {
		parts = append(parts, fmt.Sprintf("%s=%.4f", l, r.Classes[l].F1))
	}
	parts = append(parts,
		fmt.Sprintf("macro_f1=%.4f", r.MacroAvg.F1),
		fmt.Sprintf("weighted_f1=%.4f", r.WeightedAvg.F1),
	)
	return strings.Join(parts, " ")
}
