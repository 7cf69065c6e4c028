package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/ccollicutt/routelog/pkg/parser"
	"github.com/ccollicutt/routelog/pkg/stats"
)

var (
	// ErrFileNotFound is returned when an input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidEncoding is returned when a file is not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")
)

// maxLineSize is the longest line the scanner accepts.
const maxLineSize = 1024 * 1024

// cancelCheckInterval is how many lines are scanned between context checks.
const cancelCheckInterval = 4096

// FileError describes a file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// scanLinesKeepEOL is bufio.ScanLines without stripping the terminator, so a
// level token at the end of a line is still followed by whitespace.
func scanLinesKeepEOL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ProcessFile counts the request-log lines of one file.
//
// The file is only read. On any open or read failure the returned result is
// empty (no routes, zero total) and the error is a *FileError; a missing file
// wraps ErrFileNotFound and a line that is not UTF-8 wraps ErrInvalidEncoding.
// If ctx is cancelled mid-scan the context error is returned with an empty
// result.
func ProcessFile(ctx context.Context, path string, lp *parser.LineParser) (stats.FileResult, error) {
	empty := stats.NewFileResult(path)

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, &FileError{Path: path, Err: ErrFileNotFound}
		}
		return empty, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	result := stats.NewFileResult(path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLinesKeepEOL)

	lines := 0
	for scanner.Scan() {
		lines++
		if lines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return empty, err
			}
		}

		line := scanner.Bytes()
		if !utf8.Valid(line) {
			return empty, &FileError{Path: path, Err: fmt.Errorf("line %d: %w", lines, ErrInvalidEncoding)}
		}

		if entry, ok := lp.Parse(string(line)); ok {
			result.Record(entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return empty, &FileError{Path: path, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return empty, err
	}

	return result, nil
}

// FileErrorHandler is called once for every file that could not be processed.
type FileErrorHandler func(path string, err error)

// FileErrorPrinter returns a handler printing one plain-text line per failed
// file to w.
func FileErrorPrinter(w io.Writer) FileErrorHandler {
	return func(path string, err error) {
		if errors.Is(err, ErrFileNotFound) {
			fmt.Fprintf(w, "Error: file %s not found.\n", path)
			return
		}

		cause := err
		var fe *FileError
		if errors.As(err, &fe) {
			cause = fe.Err
		}
		fmt.Fprintf(w, "Error processing file %s: %v\n", path, cause)
	}
}
