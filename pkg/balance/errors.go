package balance

import (
	"errors"
	"fmt"
)

// Kind classifies a structural error
type Kind int

const (
	// StrayCloser is a closing marker with no open block on the stack
	StrayCloser Kind = iota
	// UnclosedOpener is an opening marker still on the stack at end of input
	UnclosedOpener
	// StrayBranch is a branch keyword seen outside any open block (strict mode only)
	StrayBranch
)

func (k Kind) String() string {
	switch k {
	case StrayCloser:
		return "stray-closer"
	case UnclosedOpener:
		return "unclosed-opener"
	case StrayBranch:
		return "stray-branch"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StructuralError records one imbalance found during a scan
type StructuralError struct {
	Kind    Kind
	Line    int    // 1-based
	Column  int    // 1-based byte offset of the keyword in the line, 0 if unknown
	Keyword string // the marker that triggered the error
}

// Message returns the error text without the line prefix
func (e StructuralError) Message() string {
	if e.Kind == UnclosedOpener {
		return fmt.Sprintf("Unclosed '%s'", e.Keyword)
	}
	return fmt.Sprintf("Unexpected '%s'", e.Keyword)
}

// String returns the report line, e.g. "Line 3: Unexpected 'fi'"
func (e StructuralError) String() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Message())
}

// AccessError reports that a file could not be checked at all. It is never
// produced once scanning has started producing results.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot check %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// ErrBinaryContent is wrapped by an AccessError when the input is not text
var ErrBinaryContent = errors.New("file appears to be binary")

// ErrNotRegular is wrapped by an AccessError when the path is a directory or device
var ErrNotRegular = errors.New("not a regular file")
