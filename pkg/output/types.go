// Package output provides formatting and output generation for route reports.
package output

import (
	"time"

	"github.com/ccollicutt/routelog/pkg/analyzer"
	"github.com/ccollicutt/routelog/pkg/parser"
	"github.com/ccollicutt/routelog/pkg/stats"
)

// Report is the complete report output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Routes holds the aggregated per-route level counts.
	Routes stats.RouteStats `json:"routes"`

	// Files describes each input file.
	Files []FileReport `json:"files,omitempty"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// TotalRequests is the number of matching request-log lines.
	TotalRequests int `json:"total_requests"`

	// LevelTotals sums each level across all routes.
	LevelTotals map[parser.Level]int `json:"level_totals"`

	// FilesAnalyzed is the number of input files.
	FilesAnalyzed int `json:"files_analyzed"`

	// FilesFailed is the number of files that could not be read.
	FilesFailed int `json:"files_failed"`

	// Partial is set when some worker results were never collected.
	Partial bool `json:"partial"`
}

// FileReport describes one input file.
type FileReport struct {
	Source    string `json:"source"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
	Collected bool   `json:"collected"`
}

// Metadata provides context about the run.
type Metadata struct {
	// Report is the report kind that produced this output.
	Report string `json:"report"`

	// AnalyzedAt is when the analysis finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, kind string) *Report {
	report := &Report{
		Routes: result.Summary.Routes,
		Files:  make([]FileReport, 0, len(result.Files)),
		Summary: Summary{
			TotalRequests: result.Summary.Total,
			LevelTotals:   result.Summary.Routes.LevelTotals(),
			FilesAnalyzed: len(result.Files),
			FilesFailed:   result.FailedFiles(),
			Partial:       !result.Complete(),
		},
		Metadata: Metadata{
			Report:     kind,
			AnalyzedAt: result.EndTime,
			Duration:   result.EndTime.Sub(result.StartTime),
		},
	}

	for _, f := range result.Files {
		fr := FileReport{
			Source:    f.Source,
			Total:     f.Total,
			Collected: f.Collected,
		}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		report.Files = append(report.Files, fr)
	}

	return report
}

// HasErrors returns true if any ERROR or CRITICAL lines were counted.
func (r *Report) HasErrors() bool {
	return r.Summary.LevelTotals[parser.LevelError]+r.Summary.LevelTotals[parser.LevelCritical] > 0
}
