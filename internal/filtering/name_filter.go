package filtering

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// NameFilter handles record name filtering using glob patterns
type NameFilter interface {
	// ShouldInclude determines if a record name should be included based on include/exclude patterns
	// Returns (shouldInclude bool, reason string)
	ShouldInclude(name string, include, exclude []string) (bool, string)
}

// defaultNameFilter matches case-insensitively, "libre*" selects "LibreOffice"
type defaultNameFilter struct{}

var _ NameFilter = (*defaultNameFilter)(nil)

// NewDefaultNameFilter creates a new defaultNameFilter
func NewDefaultNameFilter() NameFilter {
	return &defaultNameFilter{}
}

// compilePattern compiles a case-insensitive glob pattern. No separators are
// given, so '*' also matches across '/' and spaces.
func compilePattern(pattern string) (glob.Glob, error) {
	// filepath.Match rejects malformed character classes that glob may accept
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
	}
	compiled, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
	}
	return compiled, nil
}

// ValidatePatterns reports the first pattern that does not compile
func ValidatePatterns(patterns ...[]string) error {
	for _, list := range patterns {
		for _, pattern := range list {
			if _, err := compilePattern(pattern); err != nil {
				return err
			}
		}
	}
	return nil
}

func firstMatch(patterns []string, name string) (string, error) {
	lowered := strings.ToLower(name)
	for _, pattern := range patterns {
		compiled, err := compilePattern(pattern)
		if err != nil {
			return "", err
		}
		if compiled.Match(lowered) {
			return pattern, nil
		}
	}
	return "", nil
}

// ShouldInclude determines if a record name should be included.
// Exclude patterns take precedence; when include patterns are given the name
// must match one of them; with no patterns every name is included.
func (*defaultNameFilter) ShouldInclude(name string, include, exclude []string) (bool, string) {
	matched, err := firstMatch(exclude, name)
	if err != nil {
		return false, err.Error()
	}
	if matched != "" {
		return false, fmt.Sprintf("excluded by pattern '%s'", matched)
	}

	if len(include) > 0 {
		matched, err := firstMatch(include, name)
		if err != nil {
			return false, err.Error()
		}
		if matched == "" {
			return false, fmt.Sprintf("no match found in include patterns %v", include)
		}
		return true, fmt.Sprintf("included by pattern '%s'", matched)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no match in exclude patterns %v", exclude)
	}
	return true, "no name filters specified"
}
