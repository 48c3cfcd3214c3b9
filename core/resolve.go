package core

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tsawler/pdfstruct/logging"
)

// Window controls how many bytes are read when resolving an indirect
// object. The first read is Initial bytes; each retry adds Step.
type Window struct {
	Initial int
	Step    int
}

// DefaultWindow is used by IndirectRef.GetIndirectObj.
var DefaultWindow = Window{Initial: 200, Step: 200}

// GetIndirectObj resolves the reference with DefaultWindow. The result is
// an IndirectObject or a Stream.
func (r IndirectRef) GetIndirectObj(src io.ReadSeeker, xref *XRefTable) (Object, error) {
	return ResolveIndirect(src, xref, r, DefaultWindow)
}

// ResolveIndirect looks ref up in xref and parses the object at that
// offset. A window that ends before the object does is grown and read
// again; any other failure is returned as is. Growth stops at the end of
// the file, where resolution fails with ErrWindowExhausted.
func ResolveIndirect(src io.ReadSeeker, xref *XRefTable, ref IndirectRef, w Window) (Object, error) {
	if w.Initial <= 0 {
		w.Initial = DefaultWindow.Initial
	}
	if w.Step <= 0 {
		w.Step = DefaultWindow.Step
	}

	offset, err := xref.ByteOffset(src, ref.Number, ref.Generation)
	if err != nil {
		return nil, fmt.Errorf("look up %v: %w", ref, err)
	}

	size := w.Initial
	for {
		buf, err := readPartially(src, offset, size)
		if err != nil {
			return nil, fmt.Errorf("failed to read %v at offset %d: %w", ref, offset, err)
		}

		obj, err := parseWindow(buf, offset)
		if err == nil {
			if err := checkObjectHeader(obj, ref); err != nil {
				return nil, err
			}
			return obj, nil
		}
		if !IsWindowTooSmall(err) {
			return nil, fmt.Errorf("parse %v at offset %d: %w", ref, offset, err)
		}
		if len(buf) < size {
			return nil, fmt.Errorf("parse %v at offset %d: %w: %w", ref, offset, ErrWindowExhausted, err)
		}

		size += w.Step
		logging.Logger().Debug("growing resolve window",
			slog.Int("object", ref.Number),
			slog.Int("generation", ref.Generation),
			slog.Int64("offset", offset),
			slog.Int("window", size))
	}
}

func parseWindow(buf []byte, offset int64) (Object, error) {
	p, err := NewParser(buf, offset)
	if err != nil {
		return nil, err
	}
	if p.awaitingHeader() {
		return nil, offsetErr(ErrFinishInObject, offset, "no object header in %d bytes", len(buf))
	}
	return p.Parse()
}

// checkObjectHeader verifies that the parsed "N G obj" matches ref.
func checkObjectHeader(obj Object, ref IndirectRef) error {
	var num, gen int
	switch v := obj.(type) {
	case IndirectObject:
		num, gen = v.Number, v.Generation
	case Stream:
		num, gen = v.Number, v.Generation
	default:
		return offsetErr(ErrObjectTypeMismatch, obj.Offset(), "required IndirectObject, got %v", obj.Type())
	}
	if num != ref.Number || gen != ref.Generation {
		return offsetErr(ErrObjectNumberMismatch, obj.Offset(), "requested %v, found %d %d obj", ref, num, gen)
	}
	return nil
}
