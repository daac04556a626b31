package balance

import (
	"bufio"
	"bytes"
	"os"
)

const (
	// binarySniffLen is how much of a file is inspected for NUL bytes
	binarySniffLen = 8000
	readBufferSize = 64 * 1024
)

// CheckFile scans the file at path. Any failure to open or read the file is
// returned as an *AccessError and no partial report is produced.
func CheckFile(path string, opts Options) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &AccessError{Path: path, Err: ErrNotRegular}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, readBufferSize)
	head, err := reader.Peek(binarySniffLen)
	if err != nil && len(head) == 0 && info.Size() > 0 {
		return nil, &AccessError{Path: path, Err: err}
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil, &AccessError{Path: path, Err: ErrBinaryContent}
	}

	report, err := Check(reader, opts)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	return report, nil
}
