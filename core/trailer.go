package core

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tsawler/pdfstruct/logging"
)

// trailerRead is how much of the file tail is searched. The %%EOF marker
// must appear within the last 1024 bytes.
const trailerRead = 1024

// Trailer holds what the tail of the file says about the document.
type Trailer struct {
	XRefStartOffset int64       // offset of the "xref" keyword
	Size            Int         // declared object count; a sanity bound only
	Root            IndirectRef // document catalog
	Dict            Dict        // the whole trailer dictionary
}

// ParseTrailer reads the last bytes of a file of fileSize bytes and
// extracts the startxref offset and the trailer dictionary.
func ParseTrailer(src io.ReadSeeker, fileSize int64) (*Trailer, error) {
	size := min(fileSize, trailerRead)
	start := fileSize - size

	buf, err := readPartially(src, start, int(size))
	if err != nil {
		return nil, fmt.Errorf("failed to read file tail: %w", err)
	}
	buf, ok := CutTailFrom(buf, []byte("%%EOF"))
	if !ok {
		return nil, offsetErr(ErrEOFNotFound, start, "")
	}

	xrefOffset, err := parseXRefOffset(buf, start)
	if err != nil {
		return nil, err
	}

	dict, err := parseTrailerDict(buf, start)
	if err != nil {
		return nil, err
	}
	if err := dict.AssertWithKey("Size", "Root"); err != nil {
		return nil, fmt.Errorf("trailer dictionary: %w", err)
	}
	sizeObj, err := Ensure[Int](dict.Get("Size"))
	if err != nil {
		return nil, fmt.Errorf("trailer /Size: %w", err)
	}
	root, err := Ensure[IndirectRef](dict.Get("Root"))
	if err != nil {
		return nil, fmt.Errorf("trailer /Root: %w", err)
	}

	logging.Logger().Debug("trailer",
		slog.Int64("startxref", xrefOffset),
		slog.Int64("size", sizeObj.Value),
		slog.String("root", root.String()))

	return &Trailer{
		XRefStartOffset: xrefOffset,
		Size:            sizeObj,
		Root:            root,
		Dict:            dict,
	}, nil
}

// parseXRefOffset parses the integer after the last startxref.
func parseXRefOffset(buf []byte, base int64) (int64, error) {
	after, ok := ExtractTailAfter(buf, []byte("startxref"))
	if !ok {
		return 0, offsetErr(ErrStartXRefNotFound, base, "")
	}
	afterOffset := base + int64(len(buf)-len(after))

	offset, err := parseInteger(after, afterOffset)
	if err != nil {
		return 0, fmt.Errorf("parse byte offset of cross reference table: %w", err)
	}
	if err := offset.AssertNatural(); err != nil {
		return 0, fmt.Errorf("parse byte offset of cross reference table: %w", err)
	}
	return offset.Value, nil
}

// parseTrailerDict parses the span between the last trailer keyword and
// the last startxref as one dictionary.
func parseTrailerDict(buf []byte, base int64) (Dict, error) {
	head, ok := CutTailFrom(buf, []byte("startxref"))
	if !ok {
		return Dict{}, offsetErr(ErrStartXRefNotFound, base, "")
	}
	dictBuf, ok := ExtractTailAfter(head, []byte("trailer"))
	if !ok {
		return Dict{}, offsetErr(ErrTrailerNotFound, base, "")
	}
	dictOffset := base + int64(len(head)-len(dictBuf))

	p, err := NewParser(dictBuf, dictOffset)
	if err != nil {
		return Dict{}, fmt.Errorf("parse trailer dictionary: %w", err)
	}
	obj, err := p.Parse()
	if err != nil {
		return Dict{}, fmt.Errorf("parse trailer dictionary: %w", err)
	}
	dict, err := Ensure[Dict](obj)
	if err != nil {
		return Dict{}, fmt.Errorf("parse trailer dictionary: %w", err)
	}
	return dict, nil
}
