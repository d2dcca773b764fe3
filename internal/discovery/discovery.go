package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/autextification/scorer/internal/models"
)

// TruthFileName is the ground-truth file expected under <root>/<subtask>/<language>/.
const TruthFileName = "truth.tsv"

var (
	ErrTruthNotFound  = errors.New("ground truth not found")
	ErrTruthAmbiguous = errors.New("ground truth is ambiguous")
)

// TruthFile resolves the single ground-truth file for a subtask/language pair.
// A gzip-compressed truth.tsv.gz is accepted in place of truth.tsv, but not
// alongside it.
func TruthFile(root string, subtask models.Subtask, lang models.Language) (string, error) {
	dir := filepath.Join(root, string(subtask), string(lang))
	candidates := []string{
		filepath.Join(dir, TruthFileName),
		filepath.Join(dir, TruthFileName+".gz"),
	}

	var found []string
	for _, c := range candidates {
		ok, err := fileExists(c)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", c, err)
		}
		if ok {
			found = append(found, c)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: no %s under %s", ErrTruthNotFound, TruthFileName, dir)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrTruthAmbiguous, strings.Join(found, ", "))
	}
}

// Runs returns the candidate run files under <root>/<team>/<subtask>/<language>/.
// The sequence is lazy and can be ranged over more than once; each pass
// re-reads the directory tree. Teams and runs are visited in lexical order.
// Hidden entries and directories are skipped. A missing root, or a team
// without the subtask/language directory, contributes nothing.
func Runs(root string, subtask models.Subtask, lang models.Language) iter.Seq2[models.RunRef, error] {
	return func(yield func(models.RunRef, error) bool) {
		teams, err := os.ReadDir(root)
		if err != nil {
			// No submissions yet is an empty leaderboard, not a failure.
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield(models.RunRef{}, fmt.Errorf("reading submissions root %s: %w", root, err))
			return
		}

		for _, team := range teams {
			if isHidden(team.Name()) {
				continue
			}
			if ok, _ := dirExists(filepath.Join(root, team.Name())); !ok {
				continue
			}

			dir := filepath.Join(root, team.Name(), string(subtask), string(lang))
			entries, err := os.ReadDir(dir)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if !yield(models.RunRef{}, fmt.Errorf("reading %s: %w", dir, err)) {
					return
				}
				continue
			}

			for _, e := range entries {
				if isHidden(e.Name()) {
					continue
				}
				path := filepath.Join(dir, e.Name())
				if ok, _ := fileExists(path); !ok {
					continue
				}
				ref := models.RunRef{
					Team: team.Name(),
					Name: RunName(e.Name()),
					Path: path,
				}
				if !yield(ref, nil) {
					return
				}
			}
		}
	}
}

// RunName derives a run name from its file name by dropping the extension.
// A trailing .gz is removed first, so "run1.tsv.gz" becomes "run1".
func RunName(file string) string {
	file = strings.TrimSuffix(file, ".gz")
	if ext := filepath.Ext(file); ext != "" && ext != file {
		file = strings.TrimSuffix(file, ext)
	}
	return file
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// fileExists checks if a path exists and is not a directory.
func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
