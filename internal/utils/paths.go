package utils

import "path/filepath"

// AnchorPath resolves path against baseDir. Absolute and empty paths are
// returned unchanged.
func AnchorPath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
