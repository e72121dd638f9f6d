// Package security validates the names and paths the converter writes to.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside its base directory.
var ErrPathEscape = errors.New("path escapes output directory")

// maxNameLen keeps datapack and function names within filesystem limits.
const maxNameLen = 128

// DatapackName turns an arbitrary file stem into a name Minecraft accepts
// for namespaces and functions: ASCII lower case, with every character
// outside [a-z0-9_] replaced by an underscore. An empty result becomes
// "unnamed".
func DatapackName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if b.Len() >= maxNameLen {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}

// JoinWithin joins elems onto base and rejects the result if it is not
// lexically inside base. It does not touch the filesystem.
func JoinWithin(base string, elems ...string) (string, error) {
	joined := filepath.Join(append([]string{base}, elems...)...)
	if err := within(filepath.Clean(base), joined); err != nil {
		return "", fmt.Errorf("%w: %s", err, filepath.Join(elems...))
	}
	return joined, nil
}

func within(base, path string) error {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return ErrPathEscape
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return ErrPathEscape
	}
	return nil
}

// ValidatePathWithinDirectory checks that filePath stays inside safeDir on
// disk, following symlinks. For a path that does not exist yet the nearest
// existing parent is resolved instead, so a symlinked parent directory
// cannot redirect a new file elsewhere.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	canonicalPath := absPath
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		canonicalPath = resolved
	} else {
		for check := absPath; ; {
			parent := filepath.Dir(check)
			if parent == check {
				break
			}
			if resolved, err := filepath.EvalSymlinks(parent); err == nil {
				rel, _ := filepath.Rel(parent, absPath)
				canonicalPath = filepath.Join(resolved, rel)
				break
			}
			check = parent
		}
	}

	canonicalSafeDir, err := filepath.EvalSymlinks(absSafeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory symlinks: %w", err)
	}
	if err := within(canonicalSafeDir, canonicalPath); err != nil {
		return fmt.Errorf("%w: %s is not inside %s", err, filePath, safeDir)
	}
	return nil
}
