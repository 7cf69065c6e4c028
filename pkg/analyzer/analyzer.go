// Package analyzer counts request-log lines across many files concurrently.
//
// Each input file is processed by its own goroutine. Workers share nothing;
// each hands a single result to the orchestrator through a buffered channel,
// and the orchestrator merges whatever it collected.
package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/routelog/pkg/parser"
	"github.com/ccollicutt/routelog/pkg/stats"
)

// DefaultCollectTimeout bounds the wait for each result after all workers finished.
const DefaultCollectTimeout = 5 * time.Second

// Analyzer runs one worker per file and aggregates their results.
type Analyzer struct {
	parser *parser.LineParser

	collectTimeout time.Duration
	workerTimeout  time.Duration
	logger         *zap.Logger
	onFileError    FileErrorHandler
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithCollectTimeout sets how long the orchestrator waits for each result.
func WithCollectTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.collectTimeout = d
		}
	}
}

// WithWorkerTimeout bounds how long the orchestrator waits for all workers.
// When it elapses the remaining workers are cancelled. Zero means no bound.
func WithWorkerTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d >= 0 {
			a.workerTimeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithFileErrorHandler sets the callback for files that could not be processed.
// Calls are serialized and never happen after Analyze returns.
func WithFileErrorHandler(h FileErrorHandler) Option {
	return func(a *Analyzer) {
		a.onFileError = h
	}
}

// New creates an analyzer using lp to recognize request-log lines.
func New(lp *parser.LineParser, opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:         lp,
		collectTimeout: DefaultCollectTimeout,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// FileStatus describes what happened to one input file.
type FileStatus struct {
	// Source is the file path.
	Source string

	// Total is the number of matching lines counted.
	Total int

	// Err is set when the file could not be processed.
	Err error

	// Collected is false when no result was received from the worker.
	Collected bool
}

// AnalysisResult contains the aggregated counts and run metadata.
type AnalysisResult struct {
	// Summary is the sum of all collected file results.
	Summary stats.Summary

	// Files has one entry per input file, in input order.
	Files []FileStatus

	// Collected is the number of worker results received.
	Collected int

	// CollectTimedOut is set when collection stopped on the per-result timeout.
	CollectTimedOut bool

	// WorkersTimedOut is set when the worker timeout cancelled unfinished workers.
	WorkersTimedOut bool

	StartTime time.Time
	EndTime   time.Time
}

// FailedFiles returns the number of files that reported an error.
func (r *AnalysisResult) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Complete reports whether every worker delivered a result.
func (r *AnalysisResult) Complete() bool {
	return r.Collected == len(r.Files)
}

// fileOutcome is the single message a worker hands to the orchestrator.
type fileOutcome struct {
	index  int
	result stats.FileResult
	err    error
}

// Analyze processes files concurrently and aggregates their counts.
//
// Per-file failures never fail the analysis: the file contributes an empty
// result and is reported through the file error handler. Cancelling ctx
// cancels the workers; whatever was already delivered is still aggregated.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*AnalysisResult, error) {
	if a.parser == nil {
		return nil, errors.New("analyzer has no line parser")
	}

	result := &AnalysisResult{
		Files:     make([]FileStatus, len(files)),
		StartTime: time.Now(),
	}
	for i, path := range files {
		result.Files[i] = FileStatus{Source: path}
	}

	if len(files) == 0 {
		result.Summary = stats.Aggregate(nil)
		result.EndTime = time.Now()
		return result, nil
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handoff := make(chan fileOutcome, len(files))
	errs := &errorReporter{handler: a.onFileError}
	defer errs.close()

	g, gctx := errgroup.WithContext(workCtx)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			a.runWorker(gctx, i, path, handoff, errs)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	drainOnly := false
	if !a.waitForWorkers(ctx, done) {
		drainOnly = true
		if ctx.Err() == nil {
			result.WorkersTimedOut = true
		}
		cancel()
	}

	outcomes, timedOut := a.collect(handoff, len(files), drainOnly)
	errs.close()
	result.CollectTimedOut = timedOut
	if timedOut {
		a.logger.Warn("stopped collecting worker results",
			zap.Int("collected", len(outcomes)),
			zap.Int("expected", len(files)))
	}

	collected := make([]stats.FileResult, 0, len(outcomes))
	for _, o := range outcomes {
		collected = append(collected, o.result)
		status := &result.Files[o.index]
		status.Collected = true
		status.Total = o.result.Total
		status.Err = o.err
	}

	result.Collected = len(outcomes)
	result.Summary = stats.Aggregate(collected)
	result.EndTime = time.Now()

	a.logger.Info("analysis finished",
		zap.Int("files", len(files)),
		zap.Int("collected", result.Collected),
		zap.Int("failed", result.FailedFiles()),
		zap.Int("total", result.Summary.Total),
		zap.Duration("duration", result.EndTime.Sub(result.StartTime)))

	return result, nil
}

// runWorker processes one file and delivers its outcome exactly once.
// A cancelled worker delivers nothing.
func (a *Analyzer) runWorker(ctx context.Context, index int, path string, handoff chan<- fileOutcome, errs *errorReporter) {
	a.logger.Debug("worker started", zap.String("file", path))

	res, err := ProcessFile(ctx, path, a.parser)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("worker cancelled", zap.String("file", path))
			return
		}
		a.logger.Debug("file failed", zap.String("file", path), zap.Error(err))
		if ctx.Err() == nil {
			errs.report(path, err)
		}
	}

	handoff <- fileOutcome{index: index, result: res, err: err}

	a.logger.Debug("worker finished", zap.String("file", path), zap.Int("total", res.Total))
}

// waitForWorkers blocks until every worker has returned.
// Returns false if the worker timeout elapsed or ctx was cancelled first.
func (a *Analyzer) waitForWorkers(ctx context.Context, done <-chan struct{}) bool {
	var timeout <-chan time.Time
	if a.workerTimeout > 0 {
		timer := time.NewTimer(a.workerTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
		return true
	case <-timeout:
		a.logger.Warn("worker timeout elapsed, cancelling unfinished workers",
			zap.Duration("timeout", a.workerTimeout))
		return false
	case <-ctx.Done():
		a.logger.Warn("analysis cancelled", zap.Error(ctx.Err()))
		return false
	}
}

// collect reads up to n outcomes from the handoff channel, waiting at most
// the collect timeout for each. The first timeout ends collection. With
// drainOnly set, only outcomes already delivered are read.
func (a *Analyzer) collect(handoff <-chan fileOutcome, n int, drainOnly bool) ([]fileOutcome, bool) {
	outcomes := make([]fileOutcome, 0, n)

	for len(outcomes) < n {
		if drainOnly {
			select {
			case o := <-handoff:
				outcomes = append(outcomes, o)
				continue
			default:
				return outcomes, true
			}
		}

		timer := time.NewTimer(a.collectTimeout)
		select {
		case o := <-handoff:
			timer.Stop()
			outcomes = append(outcomes, o)
		case <-timer.C:
			return outcomes, true
		}
	}

	return outcomes, false
}

// errorReporter serializes file error callbacks for one run and drops the
// ones arriving after the run is closed.
type errorReporter struct {
	mu      sync.Mutex
	handler FileErrorHandler
	closed  bool
}

func (r *errorReporter) report(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.handler == nil {
		return
	}
	r.handler(path, err)
}

func (r *errorReporter) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
