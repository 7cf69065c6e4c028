package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/routelog/pkg/parser"
)

const (
	routeColumnWidth = 30
	levelColumnWidth = 8
)

// TextFormatter formats reports as a plain-text table.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		_, err := fmt.Fprintf(w, "Total requests: %d\n", report.Summary.TotalRequests)
		return err
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\nTotal requests: %d\n\n", report.Summary.TotalRequests); err != nil {
		return err
	}

	// Header
	fmt.Fprintf(w, "%-*s", routeColumnWidth, "HANDLER")
	for _, level := range parser.Levels {
		fmt.Fprintf(w, " %*s", levelColumnWidth, level)
	}
	fmt.Fprintln(w)

	// One row per route, then column totals
	for _, route := range report.Routes.SortedRoutes() {
		fmt.Fprintf(w, "%-*s", routeColumnWidth, route)
		for _, level := range parser.Levels {
			fmt.Fprintf(w, " %*d", levelColumnWidth, report.Routes.Count(route, level))
		}
		fmt.Fprintln(w)
	}

	totals := report.Routes.LevelTotals()
	fmt.Fprintf(w, "%-*s", routeColumnWidth, "")
	for _, level := range parser.Levels {
		fmt.Fprintf(w, " %*d", levelColumnWidth, totals[level])
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if f.opts.Verbose {
		f.formatFiles(report, w)
	}

	return nil
}

func (f *TextFormatter) formatFiles(report *Report, w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d analyzed, %d failed\n", report.Summary.FilesAnalyzed, report.Summary.FilesFailed)
	for _, file := range report.Files {
		switch {
		case file.Error != "":
			fmt.Fprintf(w, "  %s: error: %s\n", file.Source, file.Error)
		case !file.Collected:
			fmt.Fprintf(w, "  %s: no result collected\n", file.Source)
		default:
			fmt.Fprintf(w, "  %s: %d request(s)\n", file.Source, file.Total)
		}
	}
	if report.Summary.Partial {
		fmt.Fprintln(w, "Warning: results are partial, some files were not collected")
	}
	fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
}
