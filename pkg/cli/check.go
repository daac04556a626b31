package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/githubnext/ifcheck/pkg/balance"
	"github.com/githubnext/ifcheck/pkg/console"
	"github.com/githubnext/ifcheck/pkg/constants"
)

// Output formats accepted by --format
const (
	FormatText   = "text"
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// CheckOptions configures a single check run
type CheckOptions struct {
	Balance balance.Options
	Format  string
	Verbose bool
}

// UsageError reports a problem with the command line, detected before any file access
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Message
}

// ValidateFormat checks the --format flag value
func ValidateFormat(format string) error {
	switch format {
	case "", FormatText, FormatPretty, FormatJSON:
		return nil
	}
	return &UsageError{Message: fmt.Sprintf("invalid format value '%s'. Must be '%s', '%s', or '%s'", format, FormatText, FormatPretty, FormatJSON)}
}

// ExitCode maps the outcome of a check to the process exit status
func ExitCode(report *balance.Report, err error) int {
	if err != nil {
		return constants.ExitUsage
	}
	if report.Valid() {
		return constants.ExitValid
	}
	return constants.ExitInvalid
}

// CheckFile checks one file and writes the report to stdout and diagnostics to
// stderr. An access error writes nothing to stdout.
func CheckFile(stdout, stderr io.Writer, path string, opts CheckOptions) (*balance.Report, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if err := opts.Balance.Validate(); err != nil {
		return nil, &UsageError{Message: err.Error()}
	}

	report, err := balance.CheckFile(path, opts.Balance)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		fmt.Fprintln(stderr, console.FormatVerboseMessage(fmt.Sprintf("Scanned %d lines (%d tokens) in %s, %d error(s)",
			report.Lines, report.Tokens, console.ToRelativePath(path), len(report.Errors))))
	}

	if err := WriteReport(stdout, path, report, opts.Format); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return report, nil
}

// WriteReport renders report in the requested format
func WriteReport(w io.Writer, path string, report *balance.Report, format string) error {
	switch format {
	case FormatJSON:
		return writeJSONReport(w, path, report)
	case FormatPretty:
		_, err := io.WriteString(w, renderPrettyReport(path, report))
		return err
	default:
		_, err := io.WriteString(w, report.Text())
		return err
	}
}

// ReportJSON is the --format json document
type ReportJSON struct {
	File   string            `json:"file"`
	Valid  bool              `json:"valid"`
	Errors []ReportErrorJSON `json:"errors"`
}

// ReportErrorJSON is one structural error in a ReportJSON
type ReportErrorJSON struct {
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Kind    string `json:"kind"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

func buildJSONReport(path string, report *balance.Report) ReportJSON {
	doc := ReportJSON{
		File:   path,
		Valid:  report.Valid(),
		Errors: make([]ReportErrorJSON, 0, len(report.Errors)),
	}
	for _, e := range report.Errors {
		doc.Errors = append(doc.Errors, ReportErrorJSON{
			Line:    e.Line,
			Column:  e.Column,
			Kind:    e.Kind.String(),
			Keyword: e.Keyword,
			Message: e.Message(),
		})
	}
	return doc
}

func writeJSONReport(w io.Writer, path string, report *balance.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSONReport(path, report))
}

// renderPrettyReport renders each error with its source line, the way compiler
// diagnostics are shown
func renderPrettyReport(path string, report *balance.Report) string {
	if report.Valid() {
		return console.FormatSuccessMessage(constants.ValidMessage) + "\n"
	}

	lines := readSourceLines(path)

	var output strings.Builder
	for _, e := range report.Errors {
		compilerErr := console.CompilerError{
			Position: console.ErrorPosition{File: path, Line: e.Line},
			Type:     "error",
			Message:  e.Message(),
			Hint:     hintFor(e),
		}
		if e.Line <= len(lines) {
			compilerErr.Context = []string{lines[e.Line-1]}
			if e.Column > 0 {
				compilerErr.Position.Column = e.Column
				compilerErr.Position.Length = len(e.Keyword)
			}
		}
		output.WriteString(console.FormatError(compilerErr))
	}
	fmt.Fprintf(&output, "%d structural error(s) found\n", len(report.Errors))
	return output.String()
}

func hintFor(e balance.StructuralError) string {
	switch e.Kind {
	case balance.UnclosedOpener:
		return "add the matching closing marker after this block"
	case balance.StrayBranch:
		return fmt.Sprintf("'%s' is only valid inside an open block", e.Keyword)
	default:
		return fmt.Sprintf("remove this '%s' or add the opening marker it belongs to", e.Keyword)
	}
}

func readSourceLines(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return balance.SplitLines(string(content))
}
