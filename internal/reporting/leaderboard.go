package reporting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/autextification/scorer/internal/models"
)

// Format names a leaderboard output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatJUnit    Format = "junit"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatMarkdown, FormatHTML, FormatJSON, FormatJUnit}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q: must be one of table, markdown, html, json, junit", s)
}

// Entry is one ranked row of the leaderboard.
type Entry struct {
	Rank int `json:"rank"`
	models.EvaluationResult
}

// Leaderboard is the ranked view of one evaluation pass.
type Leaderboard struct {
	Subtask     models.Subtask     `json:"subtask"`
	Language    models.Language    `json:"language"`
	GeneratedAt time.Time          `json:"generated_at"`
	Entries     []Entry            `json:"leaderboard"`
	Rejections  []models.Rejection `json:"rejected"`
}

// NewLeaderboard ranks results by macro-F1, highest first. The sort is stable:
// runs with equal macro-F1 keep the order they were given in.
func NewLeaderboard(subtask models.Subtask, lang models.Language, results []models.EvaluationResult, rejections []models.Rejection) *Leaderboard {
	sorted := make([]models.EvaluationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MacroF1 > sorted[j].MacroF1
	})

	entries := make([]Entry, len(sorted))
	for i, r := range sorted {
		entries[i] = Entry{Rank: i + 1, EvaluationResult: r}
	}
	if rejections == nil {
		rejections = []models.Rejection{}
	}
	return &Leaderboard{
		Subtask:    subtask,
		Language:   lang,
		Entries:    entries,
		Rejections: rejections,
	}
}

// Title returns a human-readable heading such as "subtask_1 / English (en)".
func (b *Leaderboard) Title() string {
	return fmt.Sprintf("%s / %s (%s)", b.Subtask, b.Language.DisplayName(), b.Language)
}

// Write renders the leaderboard in the given format.
func Write(w io.Writer, format Format, board *Leaderboard) error {
	switch format {
	case FormatTable:
		return writeTable(w, board)
	case FormatMarkdown:
		_, err := io.WriteString(w, FormatMarkdownReport(board))
		return err
	case FormatHTML:
		return writeHTML(w, board)
	case FormatJSON:
		return writeJSON(w, board)
	case FormatJUnit:
		return writeJUnit(w, board)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// formatInterval renders a confidence interval as "(low, high)".
func formatInterval(ci models.ConfidenceInterval) string {
	return fmt.Sprintf("(%.4f, %.4f)", ci.Low, ci.High)
}
