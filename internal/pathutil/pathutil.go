package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// Resolve returns the normalized absolute form of p. Absolute paths are kept
// as-is, relative ones are joined to root.
func Resolve(root, p string) string {
	cleaned := NormalizePath(p)
	if cleaned == "" {
		return ""
	}
	if filepath.IsAbs(cleaned) {
		return cleaned
	}
	return filepath.Join(NormalizePath(root), cleaned)
}

// RootRelative returns the path to target relative to root, always using
// forward slashes.
func RootRelative(root, target string) (string, error) {
	base := NormalizePath(root)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// Within reports whether target lives inside root.
func Within(root, target string) bool {
	rel, err := RootRelative(root, target)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, "../")
}

// Display renders path relative to root for presentation, falling back to the
// raw path when it sits outside root.
func Display(root, path string) string {
	if !Within(root, path) {
		return path
	}
	rel, err := RootRelative(root, path)
	if err != nil {
		return path
	}
	return rel
}
