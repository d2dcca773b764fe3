// Package wizard prompts for the subtask and language when the scorer is run
// interactively without positional arguments.
package wizard

import (
	"fmt"
	"io"
	"os"

	"github.com/autextification/scorer/internal/models"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Selection holds the task chosen in the wizard.
type Selection struct {
	Subtask  models.Subtask
	Language models.Language
}

// RunTaskWizard runs an interactive huh form to choose a subtask and language.
// Non-empty fields of initial pre-select the matching option.
func RunTaskWizard(in io.Reader, out io.Writer, initial Selection) (*Selection, error) {
	subtask := string(initial.Subtask)
	if subtask == "" {
		subtask = string(models.Subtask1)
	}
	lang := string(initial.Language)
	if lang == "" {
		lang = string(models.LanguageEnglish)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Subtask").
				Description("Which subtask's runs should be scored?").
				Options(subtaskOptions()...).
				Value(&subtask),
			huh.NewSelect[string]().
				Title("Language").
				Description("Runs are scored against the ground truth for this language").
				Options(languageOptions()...).
				Value(&lang),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if !IsInteractive(in) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return newSelection(subtask, lang)
}

// IsInteractive reports whether r is attached to a terminal.
func IsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newSelection(subtask, lang string) (*Selection, error) {
	st, err := models.ParseSubtask(subtask)
	if err != nil {
		return nil, err
	}
	l, err := models.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	return &Selection{Subtask: st, Language: l}, nil
}

func subtaskOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(models.Subtasks))
	for _, s := range models.Subtasks {
		opts = append(opts, huh.NewOption(string(s), string(s)))
	}
	return opts
}

func languageOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(models.Languages))
	for _, l := range models.Languages {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", l.DisplayName(), l), string(l)))
	}
	return opts
}
