package reader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/tsawler/pdfstruct/core"
	"github.com/tsawler/pdfstruct/logging"
	"github.com/tsawler/pdfstruct/resolver"
)

// Reader represents an open PDF document. All reads from the underlying
// source are serialised, so a Reader may be shared between goroutines.
type Reader struct {
	mu       sync.Mutex
	src      io.ReadSeeker
	closer   io.Closer
	fileSize int64
	version  Version
	trailer  *core.Trailer
	xref     *core.XRefTable
	window   core.Window
	logger   *slog.Logger
}

// Ensure Reader can back a resolver.ObjectResolver via ObjectReader
var _ resolver.ObjectReader = (*Reader)(nil)

// Option configures a Reader
type Option func(*Reader)

// WithLogger sets the logger for this document's own events. Events from
// core go to the logging package logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = l
	}
}

// WithWindow sets the read window used when resolving indirect objects and
// indirect stream lengths (default: core.DefaultWindow)
func WithWindow(w core.Window) Option {
	return func(r *Reader) {
		r.window = w
	}
}

// Open opens a PDF file and returns a Reader
func Open(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader, err := NewReader(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}

	return reader, nil
}

// NewReader validates the header, reads the trailer and cross-reference
// table, and checks the document catalog. If src is also an io.Closer,
// Close closes it.
func NewReader(src io.ReadSeeker, opts ...Option) (*Reader, error) {
	r := &Reader{
		src:    src,
		window: core.DefaultWindow,
		logger: logging.Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Logger()
	}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get file size: %w", err)
	}
	r.fileSize = size

	version, err := parseHeader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	trailer, err := core.ParseTrailer(src, size)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer: %w", err)
	}
	r.trailer = trailer

	xref, err := core.NewXRefTable(src, trailer.XRefStartOffset)
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	r.xref = xref

	if end := int64(xref.From() + xref.EntryNum()); trailer.Size.Value != end {
		r.logger.Warn("trailer size disagrees with xref table",
			slog.Int64("size", trailer.Size.Value),
			slog.Int64("xref_end", end))
	}

	if _, err := r.Catalog(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	r.logger.Debug("opened document",
		slog.String("version", version.String()),
		slog.Int64("size", size),
		slog.Int("objects", xref.EntryNum()))

	return r, nil
}

// Close closes the underlying file, if the Reader owns one
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Version returns the PDF version from the header
func (r *Reader) Version() Version {
	return r.version
}

// Trailer returns the parsed trailer
func (r *Reader) Trailer() *core.Trailer {
	return r.trailer
}

// XRefTable returns the cross-reference table
// Exposed for debugging/inspection
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xref
}

// FileSize returns the size of the PDF file in bytes
func (r *Reader) FileSize() int64 {
	return r.fileSize
}

// NumObjects returns the object count the trailer declares
func (r *Reader) NumObjects() int {
	return int(r.trailer.Size.Value)
}

// IndirectObject resolves ref and returns the IndirectObject or Stream
// found at its offset.
func (r *Reader) IndirectObject(ref core.IndirectRef) (core.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, err := core.ResolveIndirect(r.src, r.xref, ref, r.window)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve object %v: %w", ref, err)
	}
	return obj, nil
}

// ResolveReference resolves an indirect reference to the object it
// wraps. Streams are returned as core.Stream.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, err := r.IndirectObject(ref)
	if err != nil {
		return nil, err
	}
	if ind, ok := obj.(core.IndirectObject); ok {
		return ind.Object, nil
	}
	return obj, nil
}

// Resolve resolves an object if it's an indirect reference, otherwise returns it as-is
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// ResolveDeep recursively resolves all indirect references in an object
func (r *Reader) ResolveDeep(obj core.Object, opts ...resolver.Option) (core.Object, error) {
	return resolver.NewResolver(r, opts...).ResolveDeep(obj)
}

// ReadStream returns the raw content of s. Filters are not applied.
func (r *Reader) ReadStream(s core.Stream) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := s.Read(r.src, r.xref, r.window)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %d %d: %w", s.Number, s.Generation, err)
	}
	return data, nil
}

// Catalog returns the document catalog (root object). It must carry /Type
// and /Pages, and /Type must be /Catalog.
func (r *Reader) Catalog() (core.Dict, error) {
	obj, err := r.ResolveReference(r.trailer.Root)
	if err != nil {
		return core.Dict{}, fmt.Errorf("failed to resolve catalog: %w", err)
	}

	catalog, err := core.Ensure[core.Dict](obj)
	if err != nil {
		return core.Dict{}, fmt.Errorf("catalog: %w", err)
	}
	if err := catalog.AssertWithKey("Type", "Pages"); err != nil {
		return core.Dict{}, fmt.Errorf("catalog: %w", err)
	}
	if err := catalog.EnsureType("Catalog"); err != nil {
		return core.Dict{}, fmt.Errorf("catalog: %w", err)
	}

	return catalog, nil
}

// Info returns the document info dictionary (metadata). Info is
// optional; a document without one yields an empty Dict and no error.
func (r *Reader) Info() (core.Dict, error) {
	infoObj := r.trailer.Dict.Get("Info")
	if infoObj == nil {
		return core.Dict{}, nil
	}

	obj, err := r.Resolve(infoObj)
	if err != nil {
		return core.Dict{}, fmt.Errorf("failed to resolve info: %w", err)
	}

	info, err := core.Ensure[core.Dict](obj)
	if err != nil {
		return core.Dict{}, fmt.Errorf("info: %w", err)
	}
	return info, nil
}

// Metadata returns the text-string entries of the info dictionary
// (Title, Author, Producer, ...) decoded to UTF-8. Entries that are not
// strings, such as /Trapped, are skipped.
func (r *Reader) Metadata() (map[string]string, error) {
	info, err := r.Info()
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string, info.Len())
	for _, key := range info.Keys() {
		obj, err := r.Resolve(info.Get(key))
		if err != nil {
			return nil, fmt.Errorf("info /%s: %w", key, err)
		}
		s, ok := obj.(core.String)
		if !ok {
			continue
		}
		text, err := s.Text()
		if err != nil {
			return nil, fmt.Errorf("info /%s: %w", key, err)
		}
		meta[key] = text
	}
	return meta, nil
}
