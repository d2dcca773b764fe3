package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Subtask identifies one of the shared-task tracks.
type Subtask string

const (
	Subtask1 Subtask = "subtask_1"
	Subtask2 Subtask = "subtask_2"
)

// Subtasks lists every accepted subtask in display order.
var Subtasks = []Subtask{Subtask1, Subtask2}

// ParseSubtask validates a subtask name.
func ParseSubtask(s string) (Subtask, error) {
	for _, st := range Subtasks {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid subtask %q (choose from %s)", s, joinChoices(Subtasks))
}

// Language identifies the language split of a subtask.
type Language string

const (
	LanguageSpanish Language = "es"
	LanguageEnglish Language = "en"
)

// Languages lists every accepted language in display order.
var Languages = []Language{LanguageSpanish, LanguageEnglish}

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	for _, l := range Languages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid language %q (choose from %s)", s, joinChoices(Languages))
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	return language.Make(string(l))
}

// DisplayName returns the English name of the language, e.g. "Spanish".
func (l Language) DisplayName() string {
	name := display.English.Languages().Name(l.Tag())
	if name == "" {
		return string(l)
	}
	return name
}

func joinChoices[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + string(v) + "'"
	}
	return strings.Join(parts, ", ")
}

// Record is one row of a two-column (id, label) table.
type Record struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RunRef points at one team's prediction file.
type RunRef struct {
	Team string `json:"team"`
	Name string `json:"run"`
	Path string `json:"path"`
}
