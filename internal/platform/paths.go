package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath makes path absolute and cleans it for the current platform
func NormalizePath(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	unc := IsUNCPath(path)

	abs := path
	if !IsAbsolute(path) {
		var err error
		abs, err = filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
	}
	normalized := filepath.Clean(abs)

	// On Windows, ensure UNC paths are preserved
	if unc && !strings.HasPrefix(normalized, `\\`) {
		normalized = `\\` + strings.TrimLeft(normalized, `\/`)
	}

	// Drop a trailing separator so "/a/b/" and "/a/b" compare equal
	if len(normalized) > 1 && !isVolumeRoot(normalized) {
		normalized = strings.TrimRight(normalized, string(filepath.Separator))
	}

	return normalized, nil
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}

// IsAbsolute checks if a path is absolute
func IsAbsolute(path string) bool {
	if IsUNCPath(path) {
		return true
	}
	return filepath.IsAbs(path)
}

// CaseSensitiveNames reports whether the host's default filesystem tells
// names apart by case. Windows and macOS default filesystems do not.
func CaseSensitiveNames() bool {
	return runtime.GOOS != "windows" && runtime.GOOS != "darwin"
}

// SamePath reports whether two normalized paths name the same location
func SamePath(a, b string) bool {
	if !CaseSensitiveNames() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// IsNested reports whether child lies strictly inside parent
func IsNested(parent, child string) bool {
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !CaseSensitiveNames() {
		return strings.HasPrefix(strings.ToLower(child), strings.ToLower(prefix))
	}
	return strings.HasPrefix(child, prefix)
}

// ToSlash converts a relative path to the slash form used in item paths
func ToSlash(rel string) string {
	if rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// JoinRel joins slash-separated relative path elements, skipping empty ones
func JoinRel(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		rest := path
		if len(rest) >= 2 && rest[1] == ':' {
			rest = rest[2:]
		}
		for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*"} {
			if strings.Contains(rest, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	if strings.ContainsRune(path, 0) {
		return &PathError{Path: path, Message: "path contains NUL byte"}
	}

	return nil
}

func isVolumeRoot(path string) bool {
	vol := filepath.VolumeName(path)
	return path == vol+string(filepath.Separator)
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
