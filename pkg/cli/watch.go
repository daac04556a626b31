package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/githubnext/ifcheck/pkg/balance"
	"github.com/githubnext/ifcheck/pkg/console"
)

const debounceDelay = 300 * time.Millisecond

// WatchAndCheck checks path once and then again every time it changes, until ctx
// is cancelled or SIGINT/SIGTERM is received. It returns the exit code of the
// last completed check.
func WatchAndCheck(ctx context.Context, stdout, stderr io.Writer, path string, opts CheckOptions) (int, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return ExitCode(nil, err), err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ExitCode(nil, err), fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		err = &balance.AccessError{Path: path, Err: err}
		return ExitCode(nil, err), err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ExitCode(nil, err), fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file on save are still seen
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		return ExitCode(nil, err), fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spinner := console.NewSpinner(fmt.Sprintf("Watching %s for changes...", console.ToRelativePath(path)))

	var mu sync.Mutex
	lastCode := 0
	stopped := false
	runCheck := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}

		spinner.Stop()
		report, err := CheckFile(stdout, stderr, path, opts)
		if err != nil {
			fmt.Fprintln(stderr, console.FormatErrorMessage(err.Error()))
		}
		lastCode = ExitCode(report, err)
		spinner.UpdateMessage(watchStatus(path, report, err))
		spinner.Start()
	}

	fmt.Fprintln(stderr, console.FormatInfoMessage(fmt.Sprintf("Watching for file changes to %s", console.ToRelativePath(path))))
	runCheck()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Lock()
		stopped = true
		spinner.Stop()
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return lastExitCode(&mu, &lastCode), fmt.Errorf("watcher channel closed")
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}

			if opts.Verbose {
				fmt.Fprintln(stderr, console.FormatVerboseMessage(fmt.Sprintf("Detected change: %s (%s)", event.Name, event.Op.String())))
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				fmt.Fprintln(stderr, console.FormatWarningMessage(fmt.Sprintf("%s was removed, waiting for it to reappear", console.ToRelativePath(path))))
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, runCheck)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return lastExitCode(&mu, &lastCode), fmt.Errorf("watcher error channel closed")
			}
			if opts.Verbose {
				fmt.Fprintln(stderr, console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", err)))
			}

		case <-ctx.Done():
			if opts.Verbose {
				fmt.Fprintln(stderr, console.FormatInfoMessage("Stopping watch mode..."))
			}
			return lastExitCode(&mu, &lastCode), nil
		}
	}
}

func lastExitCode(mu *sync.Mutex, code *int) int {
	mu.Lock()
	defer mu.Unlock()
	return *code
}

// watchStatus is the spinner text shown while waiting for the next change
func watchStatus(path string, report *balance.Report, err error) string {
	name := console.ToRelativePath(path)
	switch {
	case err != nil:
		return fmt.Sprintf("%s could not be checked, watching for changes...", name)
	case report.Valid():
		return fmt.Sprintf("%s is balanced, watching for changes...", name)
	default:
		return fmt.Sprintf("%s has %d structural error(s), watching for changes...", name, len(report.Errors))
	}
}
