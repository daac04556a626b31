package balance

import "strings"

// splitLineEndings splits a chunk read up to '\n' into lines ending in "\n",
// "\r\n" or a lone "\r", and rewrites each terminator to "\n". The last line of
// the input may have no terminator.
func splitLineEndings(chunk string) []string {
	var lines []string
	for chunk != "" {
		i := strings.IndexAny(chunk, "\r\n")
		if i < 0 {
			lines = append(lines, chunk)
			break
		}
		next := i + 1
		if chunk[i] == '\r' && next < len(chunk) && chunk[next] == '\n' {
			next++
		}
		lines = append(lines, chunk[:i]+"\n")
		chunk = chunk[next:]
	}
	return lines
}

// SplitLines splits content into lines without terminators, treating "\n",
// "\r\n" and a lone "\r" as line ends. Line N of a report is element N-1.
func SplitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}
