// Package report resolves a report kind and generates it.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ccollicutt/routelog/pkg/analyzer"
	"github.com/ccollicutt/routelog/pkg/output"
)

// Kind is a report kind. The set is closed: anything that is not a known
// name resolves to KindInvalid.
type Kind int

const (
	// KindInvalid prints a notice and does nothing else.
	KindInvalid Kind = iota
	// KindHandlers counts log levels per request handler route.
	KindHandlers
)

// InvalidMessage is printed by the invalid report.
const InvalidMessage = "Invalid report type specified!"

// NoFilesMessage is printed when the handlers report gets no files.
const NoFilesMessage = "No files to process."

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindHandlers: "handlers",
}

// ParseKind resolves a report selector. Unknown or empty names give KindInvalid.
func ParseKind(name string) Kind {
	if name == kindNames[KindHandlers] {
		return KindHandlers
	}
	return KindInvalid
}

// Names lists the selectable report names.
func Names() []string {
	return []string{kindNames[KindHandlers]}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Generator produces one report.
type Generator interface {
	Generate(ctx context.Context) error
}

// Env carries what a report needs to run.
type Env struct {
	// Files are the log files to analyze.
	Files []string

	// Out receives the report.
	Out io.Writer

	// Analyzer processes the files.
	Analyzer *analyzer.Analyzer

	// Formatter renders the report.
	Formatter output.Formatter

	// OnReport, if set, is called with every rendered report.
	OnReport func(ctx context.Context, r *output.Report)
}

// New returns the generator for kind.
func New(kind Kind, env Env) Generator {
	switch kind {
	case KindHandlers:
		return &HandlersReport{env: env}
	default:
		return &InvalidReport{out: env.Out}
	}
}

// InvalidReport reports that the selector was not recognized.
type InvalidReport struct {
	out io.Writer
}

// Generate prints the invalid-report notice.
func (r *InvalidReport) Generate(_ context.Context) error {
	_, err := fmt.Fprintln(r.out, InvalidMessage)
	return err
}

// HandlersReport counts log levels per route across all files.
type HandlersReport struct {
	env Env
}

// Generate analyzes the files and renders the route table.
// Nothing is rendered if no worker result could be collected.
func (r *HandlersReport) Generate(ctx context.Context) error {
	if len(r.env.Files) == 0 {
		_, err := fmt.Fprintln(r.env.Out, NoFilesMessage)
		return err
	}

	if r.env.Analyzer == nil || r.env.Formatter == nil {
		return errors.New("handlers report requires an analyzer and a formatter")
	}

	result, err := r.env.Analyzer.Analyze(ctx, r.env.Files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if result.Collected == 0 {
		return nil
	}

	rep := output.NewReport(result, KindHandlers.String())

	if err := r.env.Formatter.Format(ctx, rep, r.env.Out); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if r.env.OnReport != nil {
		r.env.OnReport(ctx, rep)
	}

	return nil
}
