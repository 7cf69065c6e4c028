package parser

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs expands a list of file paths and glob patterns into the list of
// files to analyze. Recursive patterns such as logs/**/*.log are supported.
//
// An argument naming an existing path is used as-is, even if it contains glob
// metacharacters, and is kept every time it is given. Files matched by
// patterns are listed once, however many patterns match them. Patterns that
// are invalid or match nothing are returned as-is so the caller can report
// them as missing.
func ExpandGlobs(patterns []string) []string {
	matched := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		if _, err := os.Lstat(pattern); err == nil {
			result = append(result, pattern)
			continue
		}

		if !doublestar.ValidatePathPattern(pattern) {
			result = append(result, pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil || len(matches) == 0 {
			result = append(result, pattern)
			continue
		}

		sort.Strings(matches)
		for _, match := range matches {
			if !matched[match] {
				matched[match] = true
				result = append(result, match)
			}
		}
	}

	return result
}
