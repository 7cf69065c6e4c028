package parser

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultMarker identifies lines written by the request-logging subsystem.
const DefaultMarker = "django.request"

var (
	levelPattern = regexp.MustCompile(`\s+(DEBUG|INFO|WARNING|ERROR|CRITICAL)\s+`)

	// Route segments are Unicode letters, digits and underscores.
	routePattern = regexp.MustCompile(`(/[\p{L}\p{N}_/]+/?)`)
)

// Matcher extracts one component from a log line.
// The bool result is false when the component is absent.
type Matcher interface {
	Match(line string) (string, bool)
}

// MarkerMatcher matches lines containing a fixed token.
type MarkerMatcher struct {
	Token string
}

// Match returns the token if the line contains it.
func (m MarkerMatcher) Match(line string) (string, bool) {
	if !strings.Contains(line, m.Token) {
		return "", false
	}
	return m.Token, true
}

// RegexpMatcher returns the first capture group of the leftmost match.
type RegexpMatcher struct {
	Pattern *regexp.Regexp
}

// Match returns the first capture group of the first match in line.
func (m RegexpMatcher) Match(line string) (string, bool) {
	matches := m.Pattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// LineParser recognizes request-log lines.
// A line matches only when the marker, a level and a route are all present;
// for level and route the first occurrence wins.
type LineParser struct {
	marker Matcher
	level  Matcher
	route  Matcher
}

// NewLineParser creates a parser for lines carrying the given marker token.
func NewLineParser(marker string) (*LineParser, error) {
	if marker == "" {
		return nil, errors.New("marker token must not be empty")
	}
	return &LineParser{
		marker: MarkerMatcher{Token: marker},
		level:  RegexpMatcher{Pattern: levelPattern},
		route:  RegexpMatcher{Pattern: routePattern},
	}, nil
}

// Parse extracts the route and level from line.
// Returns false if the line is not a complete request-log line.
// The level must be followed by whitespace, so lines read from a file should
// keep their terminator.
func (p *LineParser) Parse(line string) (Entry, bool) {
	if _, ok := p.marker.Match(line); !ok {
		return Entry{}, false
	}

	lvl, ok := p.level.Match(line)
	if !ok {
		return Entry{}, false
	}

	route, ok := p.route.Match(line)
	if !ok {
		return Entry{}, false
	}

	return Entry{Route: route, Level: Level(lvl)}, true
}
