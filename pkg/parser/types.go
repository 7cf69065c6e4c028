// Package parser extracts request routes and severity levels from log lines.
package parser

import "fmt"

// Level is a log severity level.
type Level string

// The five recognized severity levels.
const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// Levels lists every recognized level in display order.
var Levels = []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// ParseLevel converts s into a Level. Matching is exact and case-sensitive.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical:
		return Level(s), nil
	default:
		return "", fmt.Errorf("unknown level %q", s)
	}
}

// Entry is a request-log line reduced to the fields that are counted.
type Entry struct {
	// Route is the request path, e.g. /api/users/.
	Route string

	// Level is the severity the line was logged at.
	Level Level
}
