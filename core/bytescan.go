package core

import (
	"bytes"
	"io"
)

// Byte-scan helpers. Each returns false when target is not present.

// ExtractAfter returns the part of buf after the first occurrence of target.
func ExtractAfter(buf, target []byte) ([]byte, bool) {
	i := bytes.Index(buf, target)
	if i < 0 {
		return nil, false
	}
	return buf[i+len(target):], true
}

// CutFrom returns the part of buf before the first occurrence of target.
func CutFrom(buf, target []byte) ([]byte, bool) {
	i := bytes.Index(buf, target)
	if i < 0 {
		return nil, false
	}
	return buf[:i], true
}

// ExtractTailAfter returns the part of buf after the last occurrence of target.
func ExtractTailAfter(buf, target []byte) ([]byte, bool) {
	i := bytes.LastIndex(buf, target)
	if i < 0 {
		return nil, false
	}
	return buf[i+len(target):], true
}

// CutTailFrom returns the part of buf before the last occurrence of target.
func CutTailFrom(buf, target []byte) ([]byte, bool) {
	i := bytes.LastIndex(buf, target)
	if i < 0 {
		return nil, false
	}
	return buf[:i], true
}

// IndexEOL returns the index and width of the first line boundary in buf.
// CR LF counts as a single boundary of width 2.
func IndexEOL(buf []byte) (int, int) {
	for i, b := range buf {
		switch b {
		case '\n':
			return i, 1
		case '\r':
			if i+1 < len(buf) && buf[i+1] == '\n' {
				return i, 2
			}
			return i, 1
		}
	}
	return -1, 0
}

// ExtractAfterEOL returns the part of buf after its first line boundary.
func ExtractAfterEOL(buf []byte) ([]byte, bool) {
	i, w := IndexEOL(buf)
	if i < 0 {
		return nil, false
	}
	return buf[i+w:], true
}

// CutBeforeEOL returns the part of buf before its first line boundary.
func CutBeforeEOL(buf []byte) ([]byte, bool) {
	i, _ := IndexEOL(buf)
	if i < 0 {
		return nil, false
	}
	return buf[:i], true
}

// readPartially reads up to size bytes at offset. Reaching the end of the
// source is not an error; the returned slice is simply shorter.
func readPartially(src io.ReadSeeker, offset int64, size int) ([]byte, error) {
	if _, err := src.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(src, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}
