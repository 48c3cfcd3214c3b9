package reader

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/tsawler/pdfstruct/core"
)

var (
	// ErrHeaderNotFound means the first bytes of the file hold no complete line.
	ErrHeaderNotFound = errors.New("PDF header is not found")

	// ErrInvalidHeader means the first line is not a %PDF-x.y marker.
	ErrInvalidHeader = errors.New("invalid PDF header")
)

// headerRead is the longest header line accepted, EOL included.
const headerRead = 15

var headerPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// Version represents a PDF version
type Version struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// parseHeader reads the first line of the file, which must end within the
// first 15 bytes and contain %PDF-<major>.<minor>.
func parseHeader(src io.ReadSeeker) (Version, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return Version{}, fmt.Errorf("failed to seek to start: %w", err)
	}

	buf := make([]byte, headerRead)
	n, err := io.ReadFull(src, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Version{}, fmt.Errorf("failed to read header: %w", err)
	}
	buf = buf[:n]

	line, ok := core.CutBeforeEOL(buf)
	if !ok {
		return Version{}, fmt.Errorf("%w in %q", ErrHeaderNotFound, buf)
	}

	m := headerPattern.FindSubmatch(line)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}
	major, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}
	minor, err := strconv.Atoi(string(m[2]))
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}

	return Version{Major: major, Minor: minor}, nil
}
