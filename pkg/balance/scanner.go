package balance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/githubnext/ifcheck/pkg/constants"
)

// Options controls which markers the checker tracks and how lines are normalized.
// The zero value checks if/fi with mask-first normalization.
type Options struct {
	Open           string
	Close          string
	Branches       []string // only consulted when StrictBranches is set
	StrictBranches bool
	Order          CommentOrder
}

func (o Options) withDefaults() Options {
	if o.Open == "" {
		o.Open = constants.DefaultOpenMarker
	}
	if o.Close == "" {
		o.Close = constants.DefaultCloseMarker
	}
	if o.StrictBranches && len(o.Branches) == 0 {
		o.Branches = constants.DefaultBranchMarkers
	}
	return o
}

// Validate reports marker combinations that cannot be scanned meaningfully
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.Open == o.Close {
		return fmt.Errorf("opening and closing markers must differ, both are '%s'", o.Open)
	}
	for _, marker := range append([]string{o.Open, o.Close}, o.Branches...) {
		if tokens := Tokenize(marker); len(tokens) != 1 || tokens[0] != marker {
			return fmt.Errorf("marker '%s' must be a single token without whitespace or ';'", marker)
		}
		if strings.ContainsAny(marker, "#'\"\\") {
			return fmt.Errorf("marker '%s' must not contain comment, quote or escape characters", marker)
		}
	}
	for _, branch := range o.Branches {
		if branch == o.Open || branch == o.Close {
			return fmt.Errorf("branch marker '%s' conflicts with the block markers", branch)
		}
	}
	return nil
}

// Report is the outcome of one scan
type Report struct {
	Errors []StructuralError
	Lines  int // number of lines read
	Tokens int // number of tokens examined
}

// Valid reports whether the scan found no structural errors
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Text returns the report as printed by the CLI: one line per error, or the
// success message when the structure is balanced
func (r *Report) Text() string {
	if r.Valid() {
		return constants.ValidMessage + "\n"
	}
	var b strings.Builder
	for _, e := range r.Errors {
		b.WriteString(e.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Scanner tracks open blocks across the lines of a single input
type Scanner struct {
	opts   Options
	stack  []openBlock
	errs   []StructuralError
	line   int
	tokens int
}

type openBlock struct {
	line   int
	column int
}

// NewScanner returns a scanner with an empty open-block stack
func NewScanner(opts Options) *Scanner {
	return &Scanner{opts: opts.withDefaults()}
}

// ScanLine processes the next line of input
func (s *Scanner) ScanLine(text string) {
	s.line++

	normalized := NormalizeLine(text, s.opts.Order)
	if normalized == "" {
		return
	}

	var masked string
	seen := make(map[string]int)
	column := func(token string) int {
		if masked == "" {
			masked = MaskLine(text, s.opts.Order)
		}
		return TokenColumn(masked, token, seen[token])
	}

	for _, token := range Tokenize(normalized) {
		s.tokens++
		switch {
		case token == s.opts.Open:
			seen[token]++
			s.stack = append(s.stack, openBlock{line: s.line, column: column(token)})
		case token == s.opts.Close:
			seen[token]++
			if len(s.stack) == 0 {
				s.errs = append(s.errs, StructuralError{Kind: StrayCloser, Line: s.line, Column: column(token), Keyword: token})
				continue
			}
			s.stack = s.stack[:len(s.stack)-1]
		case s.opts.StrictBranches && slices.Contains(s.opts.Branches, token):
			seen[token]++
			if len(s.stack) == 0 {
				s.errs = append(s.errs, StructuralError{Kind: StrayBranch, Line: s.line, Column: column(token), Keyword: token})
			}
		}
	}
}

// Depth returns the number of currently open blocks
func (s *Scanner) Depth() int {
	return len(s.stack)
}

// Finish reports every block still open, earliest first, and returns the result.
// The scanner must not be used afterwards.
func (s *Scanner) Finish() *Report {
	errs := s.errs
	for _, block := range s.stack {
		errs = append(errs, StructuralError{Kind: UnclosedOpener, Line: block.line, Column: block.column, Keyword: s.opts.Open})
	}
	return &Report{Errors: errs, Lines: s.line, Tokens: s.tokens}
}

// Check scans r line by line. Lines of any length are accepted, and "\n",
// "\r\n" and a lone "\r" all end a line.
func Check(r io.Reader, opts Options) (*Report, error) {
	scanner := NewScanner(opts)
	reader := bufio.NewReader(r)
	for {
		chunk, err := reader.ReadString('\n')
		for _, line := range splitLineEndings(chunk) {
			scanner.ScanLine(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", scanner.line+1, err)
		}
	}
	return scanner.Finish(), nil
}

// CheckString is a convenience wrapper around Check for in-memory content
func CheckString(content string, opts Options) *Report {
	report, _ := Check(strings.NewReader(content), opts)
	return report
}
