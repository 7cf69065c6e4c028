//go:build linux || darwin

package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A FIFO with no writer blocks os.Open, standing in for a stuck worker.
func TestAnalyze_WorkerTimeoutKeepsFinishedResults(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.log",
		"django.request INFO /home/ 200",
		"django.request ERROR /home/ 500",
	)
	stuck := filepath.Join(dir, "stuck.log")
	require.NoError(t, syscall.Mkfifo(stuck, 0644))

	t.Cleanup(func() {
		// Unblock the stuck worker's open so its goroutine can exit.
		if w, err := os.OpenFile(stuck, os.O_WRONLY, 0); err == nil {
			_ = w.Close()
		}
	})

	a := New(newLineParser(t),
		WithWorkerTimeout(200*time.Millisecond),
		WithCollectTimeout(time.Hour),
	)

	start := time.Now()
	result, err := a.Analyze(context.Background(), []string{good, stuck})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.True(t, result.WorkersTimedOut)
	assert.True(t, result.CollectTimedOut)
	assert.Equal(t, 1, result.Collected)
	assert.Equal(t, 2, result.Summary.Total)
	assert.True(t, result.Files[0].Collected)
	assert.False(t, result.Files[1].Collected)
	assert.False(t, result.Complete())
}

func TestAnalyze_ParentCancelDuringWait(t *testing.T) {
	dir := t.TempDir()
	stuck := filepath.Join(dir, "stuck.log")
	require.NoError(t, syscall.Mkfifo(stuck, 0644))

	t.Cleanup(func() {
		if w, err := os.OpenFile(stuck, os.O_WRONLY, 0); err == nil {
			_ = w.Close()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := New(newLineParser(t)).Analyze(ctx, []string{stuck})
	require.NoError(t, err)

	assert.False(t, result.WorkersTimedOut, "parent cancellation is not a worker timeout")
	assert.Equal(t, 0, result.Collected)
}
