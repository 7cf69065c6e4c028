package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ccollicutt/routelog/internal/cli/commands"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestE2E_HandlersReport(t *testing.T) {
	dir := t.TempDir()
	log := writeFile(t, dir, "app.log", `2023-10-10 12:00:00 django.request INFO /home/ ok
2023-10-10 12:01:00 django.request ERROR /home/ failed
2023-10-10 12:02:00 django.request WARNING /about/ slow
2023-10-10 12:03:00 django.request INFO /home/ ok
2023-10-10 12:04:00 django.security INFO /admin/ denied
`)

	code, stdout, stderr := execute(t, log, "--report", "handlers")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if stderr != "" {
		t.Errorf("Unexpected stderr: %q", stderr)
	}

	want := "\n" +
		"Total requests: 4\n" +
		"\n" +
		"HANDLER                           DEBUG     INFO  WARNING    ERROR CRITICAL\n" +
		"/about/                               0        0        1        0        0\n" +
		"/home/                                0        2        0        1        0\n" +
		"                                      0        2        1        1        0\n"
	if stdout != want {
		t.Errorf("Output mismatch\ngot:\n%q\nwant:\n%q", stdout, want)
	}
}

func TestE2E_RecursiveGlobAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, dir, fmt.Sprintf("svc-%d/app.log", i),
			"2023-10-10 12:00:00 django.request CRITICAL /api/orders/ down\n"+
				"2023-10-10 12:00:01 django.request DEBUG /api/orders/ retry\n")
	}

	code, stdout, _ := execute(t, filepath.Join(dir, "**", "*.log"), "--report", "handlers")

	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, want := range []string{
		"Total requests: 20",
		"/api/orders/                         10        0        0        0       10",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Output missing %q:\n%s", want, stdout)
		}
	}
}

func TestE2E_MetacharacterPathsNeverAbort(t *testing.T) {
	dir := t.TempDir()
	odd := writeFile(t, dir, "app[1.log", "2023-10-10 12:00:00 django.request INFO /home/ ok\n")

	code, stdout, stderr := execute(t, odd, "[broken", "--report", "handlers", "-q")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if stdout != "Total requests: 1\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "Error: file [broken not found.") {
		t.Errorf("stderr missing not-found line: %q", stderr)
	}
}

func TestE2E_RepeatedFileCountedPerArgument(t *testing.T) {
	dir := t.TempDir()
	log := writeFile(t, dir, "app.log", "2023-10-10 12:00:00 django.request INFO /home/ ok\n")

	code, stdout, _ := execute(t, log, log, "--report", "handlers", "-q")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if stdout != "Total requests: 2\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestE2E_AllFilesMissing(t *testing.T) {
	code, stdout, stderr := execute(t, "missing-a.log", "missing-b.log", "--report", "handlers")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	for _, want := range []string{"Error: file missing-a.log not found.", "Error: file missing-b.log not found."} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q: %q", want, stderr)
		}
	}
	if !strings.Contains(stdout, "Total requests: 0") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestE2E_InvalidReport(t *testing.T) {
	code, stdout, stderr := execute(t, "app.log", "--report", "nope")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if stdout != "Invalid report type specified!\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if stderr != "" {
		t.Errorf("Unexpected stderr: %q", stderr)
	}
}

func TestE2E_UsageErrorExitCode(t *testing.T) {
	tests := [][]string{
		{},
		{"app.log", "--no-such-flag"},
		{"app.log", "--report", "handlers", "--output", "yaml"},
		{"validate"},
	}

	for _, args := range tests {
		code, _, stderr := execute(t, args...)
		if code != 2 {
			t.Errorf("args %v: exit code = %d, want 2", args, code)
		}
		if !strings.HasPrefix(stderr, "Error: ") {
			t.Errorf("args %v: stderr = %q", args, stderr)
		}
	}
}

func TestE2E_Version(t *testing.T) {
	code, stdout, _ := execute(t, "version")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if stdout != "routelog "+commands.Version+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestE2E_Validate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "marker: django.request\ncollect_timeout: 2s\n")
	bad := writeFile(t, dir, "bad.yaml", "collect_timeout: -1s\n")

	code, stdout, _ := execute(t, "validate", good)
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "Collect timeout: 2s") {
		t.Errorf("stdout = %q", stdout)
	}

	code, _, stderr := execute(t, "validate", bad)
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "collect_timeout") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestE2E_WebhookFromConfig(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	t.Setenv("ROUTELOG_TEST_TOKEN", "s3cret")

	dir := t.TempDir()
	log := writeFile(t, dir, "app.log", "2023-10-10 12:00:00 django.request INFO /home/ ok\n")
	cfg := writeFile(t, dir, "routelog.yaml", fmt.Sprintf(`report: handlers
webhooks:
  - name: ops
    url: %s
    token: ${ROUTELOG_TEST_TOKEN}
    trigger: always
`, srv.URL))

	code, _, stderr := execute(t, log, "-c", cfg, "-q")

	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr, "Webhook ops: sent (204") {
		t.Errorf("stderr = %q", stderr)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("webhook calls = %d, want 1", len(bodies))
	}
	if !strings.Contains(bodies[0], `"total_requests":1`) {
		t.Errorf("payload = %s", bodies[0])
	}
	if auths[0] != "Bearer s3cret" {
		t.Errorf("Authorization = %q", auths[0])
	}
}

func TestE2E_WebhookFailureDoesNotFailRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	log := writeFile(t, dir, "app.log", "2023-10-10 12:00:00 django.request ERROR /home/ failed\n")

	code, stdout, stderr := execute(t, log, "--report", "handlers", "--webhook-url", srv.URL)

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "Total requests: 1") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "Webhook cli: failed") {
		t.Errorf("stderr = %q", stderr)
	}
}
