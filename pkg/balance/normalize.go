package balance

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommentOrder selects whether comments are stripped before or after quoted
// strings are masked.
type CommentOrder int

const (
	// MaskFirst masks escapes and quoted strings before cutting the comment, so a
	// '#' inside quotes or written as \# does not start a comment.
	MaskFirst CommentOrder = iota
	// StripFirst cuts the raw line at the first '#' before any masking.
	StripFirst
)

func (o CommentOrder) String() string {
	switch o {
	case StripFirst:
		return "strip-first"
	default:
		return "mask-first"
	}
}

// ParseCommentOrder converts a config or flag value into a CommentOrder
func ParseCommentOrder(s string) (CommentOrder, bool) {
	switch s {
	case "", "mask-first":
		return MaskFirst, true
	case "strip-first":
		return StripFirst, true
	}
	return MaskFirst, false
}

var (
	escapePattern       = regexp.MustCompile(`\\.`)
	doubleQuotedPattern = regexp.MustCompile(`"[^"]*"`)
	singleQuotedPattern = regexp.MustCompile(`'[^']*'`)
)

// NormalizeLine removes the trailing comment and collapses escaped characters and
// quoted strings so that keywords inside string literals are not seen as tokens.
// The result is trimmed; an empty result contributes no tokens.
func NormalizeLine(line string, order CommentOrder) string {
	if order == StripFirst {
		line = stripComment(line)
		return strings.TrimSpace(maskQuoted(strings.TrimSpace(line)))
	}
	line = maskQuoted(strings.TrimSpace(line))
	return strings.TrimSpace(stripComment(line))
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func maskQuoted(line string) string {
	line = escapePattern.ReplaceAllString(line, "")
	line = doubleQuotedPattern.ReplaceAllString(line, `""`)
	return singleQuotedPattern.ReplaceAllString(line, "''")
}

// Tokenize splits a normalized line on runs of whitespace and semicolons
func Tokenize(line string) []string {
	return strings.FieldsFunc(line, isSeparator)
}

func isSeparator(r rune) bool {
	return r == ';' || unicode.IsSpace(r)
}

// MaskLine blanks out the comment, escapes and quoted string contents of line
// with spaces, keeping every remaining byte at its original offset. Tokens of
// the masked line are the tokens NormalizeLine would produce, except where an
// escape joins two words.
func MaskLine(line string, order CommentOrder) string {
	if order == StripFirst {
		return blankQuoted(blankComment(line))
	}
	return blankComment(blankQuoted(line))
}

func blankComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i] + strings.Repeat(" ", len(line)-i)
	}
	return line
}

func blankQuoted(line string) string {
	line = escapePattern.ReplaceAllStringFunc(line, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
	keepQuotes := func(m string) string {
		return m[:1] + strings.Repeat(" ", len(m)-2) + m[len(m)-1:]
	}
	line = doubleQuotedPattern.ReplaceAllStringFunc(line, keepQuotes)
	return singleQuotedPattern.ReplaceAllStringFunc(line, keepQuotes)
}

// TokenColumn returns the 1-based byte column of the nth (1-based) standalone
// occurrence of token in a masked line, or 0 when there is no such occurrence
func TokenColumn(masked, token string, n int) int {
	for offset := 0; offset < len(masked) && token != ""; {
		i := strings.Index(masked[offset:], token)
		if i < 0 {
			return 0
		}
		start := offset + i
		end := start + len(token)
		before, _ := utf8.DecodeLastRuneInString(masked[:start])
		after, _ := utf8.DecodeRuneInString(masked[end:])
		if (start == 0 || isSeparator(before)) && (end == len(masked) || isSeparator(after)) {
			n--
			if n == 0 {
				return start + 1
			}
		}
		offset = start + 1
	}
	return 0
}
