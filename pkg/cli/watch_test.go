package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/githubnext/ifcheck/pkg/balance"
	"github.com/githubnext/ifcheck/pkg/constants"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes made by watch mode
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, buf *syncBuffer, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), substr) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, output so far:\n%s", substr, buf.String())
}

func TestWatchAndCheck(t *testing.T) {
	t.Run("missing file is an access error", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.sh")

		code, err := WatchAndCheck(context.Background(), &syncBuffer{}, &syncBuffer{}, missing, CheckOptions{})
		var accessErr *balance.AccessError
		if !errors.As(err, &accessErr) {
			t.Errorf("expected access error, got %v", err)
		}
		if code != constants.ExitUsage {
			t.Errorf("exit code = %d, want %d", code, constants.ExitUsage)
		}
	})

	t.Run("invalid format is rejected before watching", func(t *testing.T) {
		path := writeScript(t, "script.sh", "if\nfi\n")

		code, err := WatchAndCheck(context.Background(), &syncBuffer{}, &syncBuffer{}, path, CheckOptions{Format: "yaml"})
		if err == nil || !strings.Contains(err.Error(), "invalid format") {
			t.Errorf("expected format error, got %v", err)
		}
		if code != constants.ExitUsage {
			t.Errorf("exit code = %d, want %d", code, constants.ExitUsage)
		}
	})

	t.Run("rechecks when the file changes", func(t *testing.T) {
		path := writeScript(t, "script.sh", "if true; then\nfi\n")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stdout := &syncBuffer{}
		stderr := &syncBuffer{}
		type result struct {
			code int
			err  error
		}
		done := make(chan result, 1)
		go func() {
			code, err := WatchAndCheck(ctx, stdout, stderr, path, CheckOptions{})
			done <- result{code, err}
		}()

		waitFor(t, stdout, "Structure seems valid.")
		if !strings.Contains(stderr.String(), "Watching for file changes") {
			t.Errorf("expected watch banner on stderr, got %q", stderr.String())
		}

		// Give the watcher a moment to be registered before modifying the file
		time.Sleep(100 * time.Millisecond)
		if err := os.WriteFile(path, []byte("if true; then\n"), 0644); err != nil {
			t.Fatalf("Failed to modify script: %v", err)
		}
		waitFor(t, stdout, "Line 1: Unclosed 'if'")

		cancel()
		select {
		case res := <-done:
			if res.err != nil {
				t.Errorf("WatchAndCheck returned error: %v", res.err)
			}
			if res.code != constants.ExitInvalid {
				t.Errorf("exit code = %d, want %d", res.code, constants.ExitInvalid)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("WatchAndCheck did not stop after cancellation")
		}
	})
}

func TestWatchStatus(t *testing.T) {
	tests := []struct {
		name     string
		report   *balance.Report
		err      error
		expected string
	}{
		{
			name:     "balanced",
			report:   &balance.Report{},
			expected: "deploy.sh is balanced",
		},
		{
			name:     "structural errors",
			report:   &balance.Report{Errors: []balance.StructuralError{{Kind: balance.StrayCloser, Line: 1, Keyword: "fi"}}},
			expected: "deploy.sh has 1 structural error(s)",
		},
		{
			name:     "access error",
			err:      &balance.AccessError{Path: "deploy.sh", Err: balance.ErrNotRegular},
			expected: "deploy.sh could not be checked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := watchStatus("deploy.sh", tt.report, tt.err)
			if !strings.HasPrefix(got, tt.expected) {
				t.Errorf("watchStatus = %q, want prefix %q", got, tt.expected)
			}
		})
	}
}
