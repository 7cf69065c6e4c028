package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter writes a report as one indented JSON document.
//
// The default document has the keys summary, routes and metadata. Verbose adds
// files, the per-file breakdown. Quiet writes only the summary object:
//
//	{"total_requests": 4, "level_totals": {"INFO": 2, ...}, "files_analyzed": 2,
//	 "files_failed": 0, "partial": false}
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns "json".
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes the JSON document for report to w.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	var doc any = report
	switch {
	case f.opts.Quiet:
		doc = report.Summary
	case !f.opts.Verbose:
		trimmed := *report
		trimmed.Files = nil
		doc = &trimmed
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
