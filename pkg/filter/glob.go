package filter

import (
	"path"
	"strings"
)

// Glob filters entries with glob patterns.
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, **/test/*
//
// Exclude patterns remove entries from the result. Skip patterns keep the
// entry visible but classify it as skipped. NoRecurse patterns keep matched
// folders without descending into them.
type Glob struct {
	Exclude   []string
	Skip      []string
	NoRecurse []string
}

// NewGlob creates a glob filter
func NewGlob(exclude, skip []string) *Glob {
	return &Glob{Exclude: exclude, Skip: skip}
}

// ShouldInclude reports whether the entry is not excluded
func (g *Glob) ShouldInclude(relativePath string, isFolder bool) bool {
	return !matchAny(relativePath, isFolder, g.Exclude)
}

// ShouldRecurse reports whether the folder may be descended into
func (g *Glob) ShouldRecurse(relativePath string) bool {
	return !matchAny(relativePath, true, g.NoRecurse)
}

// ShouldSkip reports whether the entry is shown but not compared
func (g *Glob) ShouldSkip(relativePath string, isFolder bool) bool {
	return matchAny(relativePath, isFolder, g.Skip)
}

// matchAny checks if a path matches any of the given patterns
func matchAny(relativePath string, isFolder bool, patterns []string) bool {
	if len(patterns) == 0 || relativePath == "" {
		return false
	}

	normalizedPath := strings.ReplaceAll(relativePath, "\\", "/")
	baseName := path.Base(normalizedPath)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		normalizedPattern := strings.ReplaceAll(pattern, "\\", "/")

		// Directory pattern (ends with /): matches the folder itself and
		// anything below it
		if strings.HasSuffix(normalizedPattern, "/") {
			dirPattern := strings.TrimSuffix(normalizedPattern, "/")
			if isFolder && (normalizedPath == dirPattern || matchGlob(baseName, dirPattern)) {
				return true
			}
			if strings.HasPrefix(normalizedPath, dirPattern+"/") ||
				strings.Contains(normalizedPath, "/"+dirPattern+"/") {
				return true
			}
			continue
		}

		// **/pattern matches pattern at any level
		if strings.HasPrefix(normalizedPattern, "**/") {
			suffix := strings.TrimPrefix(normalizedPattern, "**/")
			if matchGlob(baseName, suffix) ||
				normalizedPath == suffix ||
				strings.HasSuffix(normalizedPath, "/"+suffix) ||
				matchTail(normalizedPath, suffix) {
				return true
			}
			continue
		}

		if strings.Contains(normalizedPattern, "/") {
			// Pattern applies to full path
			if matchGlob(normalizedPath, normalizedPattern) {
				return true
			}
		} else if matchGlob(baseName, normalizedPattern) {
			// Pattern applies to basename only
			return true
		}
	}

	return false
}

// matchGlob performs glob matching, treating malformed patterns as no match
func matchGlob(name, pattern string) bool {
	matched, err := path.Match(pattern, name)
	return err == nil && matched
}

// matchTail checks the trailing path components against a multi-part pattern
func matchTail(p, pattern string) bool {
	want := strings.Count(pattern, "/") + 1
	parts := strings.Split(p, "/")
	if len(parts) < want {
		return false
	}
	return matchGlob(strings.Join(parts[len(parts)-want:], "/"), pattern)
}
