package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/githubnext/ifcheck/pkg/constants"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRun(t *testing.T) {
	tempDir := t.TempDir()
	valid := writeFile(t, tempDir, "valid.sh", "if true; then\n  echo hi\nfi\n")
	unclosed := writeFile(t, tempDir, "unclosed.sh", "if true; then\n  echo hi\n")
	branches := writeFile(t, tempDir, "branches.sh", "else\nif a; then\nfi\n")
	custom := writeFile(t, tempDir, "custom.txt", "begin\nend\nend\n")
	hashInQuotes := writeFile(t, tempDir, "hash.sh", "if true; then\n  echo \"#\"; fi\n")
	cfg := writeFile(t, tempDir, "ifcheck.yaml", "open: begin\nclose: end\n")
	badCfg := writeFile(t, tempDir, "bad.yaml", "open: begin\nclosing: end\n")

	tests := []struct {
		name           string
		args           []string
		expectedCode   int
		expectedStdout string
		stderrContains string
	}{
		{
			name:           "valid file",
			args:           []string{valid},
			expectedCode:   constants.ExitValid,
			expectedStdout: "Structure seems valid.\n",
		},
		{
			name:           "unclosed if",
			args:           []string{unclosed},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 1: Unclosed 'if'\n",
		},
		{
			name:           "missing argument",
			args:           []string{},
			expectedCode:   constants.ExitUsage,
			stderrContains: "usage: expected exactly one file argument, got 0",
		},
		{
			name:           "too many arguments",
			args:           []string{valid, unclosed},
			expectedCode:   constants.ExitUsage,
			stderrContains: "got 2",
		},
		{
			name:           "missing file",
			args:           []string{filepath.Join(tempDir, "nope.sh")},
			expectedCode:   constants.ExitUsage,
			stderrContains: "cannot check",
		},
		{
			name:           "unknown flag",
			args:           []string{"--bogus", valid},
			expectedCode:   constants.ExitUsage,
			stderrContains: "usage: unknown flag: --bogus",
		},
		{
			name:           "invalid format",
			args:           []string{"--format", "xml", valid},
			expectedCode:   constants.ExitUsage,
			stderrContains: "invalid format value 'xml'",
		},
		{
			name:           "strict branches flag",
			args:           []string{"--strict-branches", branches},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 1: Unexpected 'else'\n",
		},
		{
			name:           "custom markers from flags",
			args:           []string{"--open", "begin", "--close", "end", custom},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 3: Unexpected 'end'\n",
		},
		{
			name:           "custom markers from config",
			args:           []string{"--config", cfg, custom},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 3: Unexpected 'end'\n",
		},
		{
			name:           "flags override config",
			args:           []string{"--config", cfg, "--close", "fi", valid},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 3: Unexpected 'fi'\n",
		},
		{
			name:           "invalid config",
			args:           []string{"--config", badCfg, custom},
			expectedCode:   constants.ExitUsage,
			stderrContains: "closing",
		},
		{
			name:           "same open and close markers",
			args:           []string{"--open", "fi", valid},
			expectedCode:   constants.ExitUsage,
			stderrContains: "must differ",
		},
		{
			name:           "hash inside quotes is not a comment",
			args:           []string{hashInQuotes},
			expectedCode:   constants.ExitValid,
			expectedStdout: "Structure seems valid.\n",
		},
		{
			name:           "legacy comment handling",
			args:           []string{"--legacy-comments", hashInQuotes},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 1: Unclosed 'if'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)

			if code != tt.expectedCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.expectedCode, stderr.String())
			}
			if stdout.String() != tt.expectedStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.expectedStdout)
			}
			if tt.stderrContains != "" && !strings.Contains(stderr.String(), tt.stderrContains) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.stderrContains)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	code := run(context.Background(), []string{"version"}, &stdout, &bytes.Buffer{})
	if code != constants.ExitValid {
		t.Errorf("exit code = %d, want %d", code, constants.ExitValid)
	}
	if !strings.Contains(stdout.String(), "ifcheck version "+version) {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestFileNamedLikeSubcommand(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".", "version", "if true; then\n")
	writeFile(t, ".", "completion", "fi\n")

	tests := []struct {
		name           string
		args           []string
		expectedCode   int
		expectedStdout string
	}{
		{
			name:           "path prefix selects the file",
			args:           []string{"./version"},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 1: Unclosed 'if'\n",
		},
		{
			name:           "completion is not a subcommand",
			args:           []string{"completion"},
			expectedCode:   constants.ExitInvalid,
			expectedStdout: "Line 1: Unexpected 'fi'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &bytes.Buffer{})
			if code != tt.expectedCode {
				t.Errorf("exit code = %d, want %d", code, tt.expectedCode)
			}
			if stdout.String() != tt.expectedStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.expectedStdout)
			}
		})
	}
}

func TestRootCommandSetup(t *testing.T) {
	exitCode := 0
	rootCmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{}, &exitCode)

	if !strings.HasPrefix(rootCmd.Use, constants.CLIName) {
		t.Errorf("rootCmd.Use = %q, want prefix %q", rootCmd.Use, constants.CLIName)
	}

	for _, name := range []string{"mcp-server", "version"} {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}

	for _, flag := range []string{"format", "watch"} {
		if rootCmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag --%s on root command", flag)
		}
	}
	for _, flag := range []string{"verbose", "config", "open", "close", "strict-branches", "legacy-comments"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}
