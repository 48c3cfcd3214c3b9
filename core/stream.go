package core

import (
	"bytes"
	"fmt"
	"io"
)

// Length returns the stream's /Length. An indirect length is resolved
// through xref and must be an integer.
func (s Stream) Length(src io.ReadSeeker, xref *XRefTable, w Window) (int64, error) {
	obj := s.Dict.Get("Length")
	if obj == nil {
		return 0, offsetErr(ErrDictKeyNotFound, s.Dict.Pos, "/Length")
	}

	if ref, ok := obj.(IndirectRef); ok {
		resolved, err := ResolveIndirect(src, xref, ref, w)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stream length reference: %w", err)
		}
		ind, err := Ensure[IndirectObject](resolved)
		if err != nil {
			return 0, fmt.Errorf("stream length reference: %w", err)
		}
		obj = ind.Object
	}

	length, err := Ensure[Int](obj)
	if err != nil {
		return 0, fmt.Errorf("stream length: %w", err)
	}
	if length.Value < 0 {
		return 0, offsetErr(ErrInvalidStreamLength, length.Pos, "%d", length.Value)
	}
	return length.Value, nil
}

// GetStream reads the raw, undecoded stream content using DefaultWindow
// for an indirect /Length.
func (s Stream) GetStream(src io.ReadSeeker, xref *XRefTable) ([]byte, error) {
	return s.Read(src, xref, DefaultWindow)
}

// Read reads exactly Length bytes starting at DataOffset. Filters are not
// applied. A file that ends first yields ErrShortStream.
func (s Stream) Read(src io.ReadSeeker, xref *XRefTable, w Window) ([]byte, error) {
	length, err := s.Length(src, xref, w)
	if err != nil {
		return nil, err
	}

	if _, err := src.Seek(s.DataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to stream data: %w", err)
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, src, length)
	if err == io.EOF {
		return nil, offsetErr(ErrShortStream, s.DataOffset, "got %d of %d bytes", n, length)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream data: %w", err)
	}
	return buf.Bytes(), nil
}
