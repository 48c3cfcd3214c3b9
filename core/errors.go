package core

import (
	"errors"
	"fmt"
)

// Lexical errors.
var (
	ErrUnexpectedByte     = errors.New("encounter unexpected byte")
	ErrUndefinedKeyword   = errors.New("encounter undefined keyword")
	ErrFinishInObject     = errors.New("buffer terminated in object")
	ErrParseNumber        = errors.New("cannot parse as number")
	ErrParseName          = errors.New("cannot parse as name")
	ErrParseHexString     = errors.New("cannot parse as hex string")
	ErrInvalidIndirectRef = errors.New("encounter invalid indirect reference")
	ErrInvalidObjectHead  = errors.New("encounter invalid object head")
)

// Syntactic errors.
var (
	ErrEmptyBuffer         = errors.New("buffer is empty")
	ErrNoToken             = errors.New("token is missing")
	ErrUnexpectedToken     = errors.New("unexpected token found")
	ErrIndirectObjMismatch = errors.New("keyword obj and endobj is not matched")
	ErrInvalidStreamObj    = errors.New("invalid stream object")
)

// Object errors.
var (
	ErrObjectTypeMismatch   = errors.New("object type mismatch")
	ErrDictKeyNotFound      = errors.New("dictionary key not found")
	ErrDictTypeMismatch     = errors.New("dictionary type mismatch")
	ErrValueRestriction     = errors.New("value restriction violated")
	ErrInvalidStreamLength  = errors.New("invalid stream length")
	ErrShortStream          = errors.New("stream data is shorter than its length")
	ErrObjectNumberMismatch = errors.New("object number mismatch")
	ErrWindowExhausted      = errors.New("object does not end before end of file")
)

// Cross-reference errors.
var (
	ErrXRefNotFound             = errors.New("xref is not found")
	ErrSubsectionNotFound       = errors.New("subsection line is not found")
	ErrXRefEntryTruncated       = errors.New("cross reference entry is truncated")
	ErrNotContain               = errors.New("object number is not contained")
	ErrGenerationNumberMismatch = errors.New("generation number mismatch")
	ErrNotSupportedEntryType    = errors.New("entry type is not supported")
	ErrInvalidEntryType         = errors.New("invalid entry type")
)

// Trailer errors.
var (
	ErrEOFNotFound       = errors.New("EOF marker is not found")
	ErrStartXRefNotFound = errors.New("startxref is not found")
	ErrTrailerNotFound   = errors.New("trailer is not found")
)

// OffsetError ties one of the sentinel errors above to the byte offset in
// the file nearest to where it was detected.
type OffsetError struct {
	Err    error
	Offset int64
	Detail string
}

func (e *OffsetError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v at byte offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("%v (%s) at byte offset %d", e.Err, e.Detail, e.Offset)
}

func (e *OffsetError) Unwrap() error { return e.Err }

func offsetErr(err error, offset int64, format string, args ...interface{}) *OffsetError {
	detail := ""
	if format != "" {
		detail = fmt.Sprintf(format, args...)
	}
	return &OffsetError{Err: err, Offset: offset, Detail: detail}
}

// IsWindowTooSmall reports whether err only means that the bytes handed to
// the lexer ended before the object did. Such errors are retried with a
// larger window; every other error is fatal.
func IsWindowTooSmall(err error) bool {
	return errors.Is(err, ErrIndirectObjMismatch) || errors.Is(err, ErrFinishInObject)
}
