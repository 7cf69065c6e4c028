// Package stats holds per-route level counts and merges them across files.
package stats

import (
	"sort"

	"github.com/ccollicutt/routelog/pkg/parser"
)

// RouteStats maps a route to its per-level counts.
// A route is present only once a count has been recorded for it.
type RouteStats map[string]map[parser.Level]int

// Add increases the count of route at level by n. Non-positive n is ignored.
func (s RouteStats) Add(route string, level parser.Level, n int) {
	if n <= 0 {
		return
	}
	levels, ok := s[route]
	if !ok {
		levels = make(map[parser.Level]int)
		s[route] = levels
	}
	levels[level] += n
}

// Count returns the count for route at level, or 0 if absent.
func (s RouteStats) Count(route string, level parser.Level) int {
	return s[route][level]
}

// Merge adds every count of other into s.
func (s RouteStats) Merge(other RouteStats) {
	for route, levels := range other {
		for level, n := range levels {
			s.Add(route, level, n)
		}
	}
}

// Clone returns a deep copy of s.
func (s RouteStats) Clone() RouteStats {
	out := make(RouteStats, len(s))
	out.Merge(s)
	return out
}

// SortedRoutes returns the routes in ascending lexicographic order.
func (s RouteStats) SortedRoutes() []string {
	routes := make([]string, 0, len(s))
	for route := range s {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// LevelTotals sums each level across all routes.
func (s RouteStats) LevelTotals() map[parser.Level]int {
	totals := make(map[parser.Level]int, len(parser.Levels))
	for _, levels := range s {
		for level, n := range levels {
			totals[level] += n
		}
	}
	return totals
}

// FileResult is the outcome of processing a single log file.
type FileResult struct {
	// Source is the path of the processed file.
	Source string `json:"source"`

	// Routes holds the per-route level counts found in the file.
	Routes RouteStats `json:"routes"`

	// Total is the number of matching lines in the file.
	Total int `json:"total"`
}

// NewFileResult returns an empty result for source.
func NewFileResult(source string) FileResult {
	return FileResult{Source: source, Routes: make(RouteStats)}
}

// Record counts one matching line.
func (r *FileResult) Record(entry parser.Entry) {
	r.Routes.Add(entry.Route, entry.Level, 1)
	r.Total++
}

// Summary is the combination of any number of FileResults.
type Summary struct {
	Routes RouteStats `json:"routes"`
	Total  int        `json:"total"`
}

// Aggregate sums the route counts and totals of results.
// The outcome does not depend on the order of results, and the inputs are
// left untouched.
func Aggregate(results []FileResult) Summary {
	sum := Summary{Routes: make(RouteStats)}
	for _, r := range results {
		sum.Total += r.Total
		sum.Routes.Merge(r.Routes)
	}
	return sum
}
