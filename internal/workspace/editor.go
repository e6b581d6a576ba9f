package workspace

import (
	"github.com/scan-io-git/scanio-remote/pkg/shared/files"
)

// FileBuffer is a snapshot of a local file used as the live editor content
// when filtering file scope findings.
type FileBuffer struct {
	path  string
	lines []string
}

// OpenFileBuffer reads path into memory.
func OpenFileBuffer(path string) (*FileBuffer, error) {
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if err := files.ValidatePath(expanded); err != nil {
		return nil, err
	}
	lines, err := files.ReadLines(expanded)
	if err != nil {
		return nil, err
	}
	return &FileBuffer{path: expanded, lines: lines}, nil
}

// Path returns the file the buffer was read from.
func (b *FileBuffer) Path() string {
	return b.path
}

// LineAt returns the 0-based line, or false when out of range.
func (b *FileBuffer) LineAt(line int) (string, bool) {
	if line < 0 || line >= len(b.lines) {
		return "", false
	}
	return b.lines[line], true
}
