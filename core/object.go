package core

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Object represents a PDF object. The set of implementations is closed;
// every object remembers the byte offset of its first token.
type Object interface {
	Type() ObjectType
	String() string
	Offset() int64
	isObject()
}

// ObjectType represents the type of PDF object
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjIndirectRef
	ObjIndirectObject
	ObjStream
)

// String returns the string representation of the object type
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjIndirectRef:
		return "IndirectRef"
	case ObjIndirectObject:
		return "IndirectObject"
	case ObjStream:
		return "Stream"
	default:
		return "Unknown"
	}
}

// Ensure narrows obj to the concrete type T, failing with
// ErrObjectTypeMismatch tagged with obj's offset.
func Ensure[T Object](obj Object) (T, error) {
	var zero T
	if t, ok := obj.(T); ok {
		return t, nil
	}

	required := "Object"
	if any(zero) != nil {
		required = zero.Type().String()
	}
	if obj == nil {
		return zero, offsetErr(ErrObjectTypeMismatch, 0, "required %s, got nothing", required)
	}
	return zero, offsetErr(ErrObjectTypeMismatch, obj.Offset(), "required %s, got %v", required, obj.Type())
}

// Null represents a PDF null object
type Null struct {
	Pos int64
}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "null" }
func (n Null) Offset() int64    { return n.Pos }
func (Null) isObject()          {}

// Bool represents a PDF boolean
type Bool struct {
	Value bool
	Pos   int64
}

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string   { return strconv.FormatBool(b.Value) }
func (b Bool) Offset() int64    { return b.Pos }
func (Bool) isObject()          {}

// Int represents a PDF integer
type Int struct {
	Value int64
	Pos   int64
}

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(i.Value, 10) }
func (i Int) Offset() int64    { return i.Pos }
func (Int) isObject()          {}

// AssertNatural fails unless the integer is greater than zero.
func (i Int) AssertNatural() error {
	if i.Value <= 0 {
		return offsetErr(ErrValueRestriction, i.Pos, "%d is not a natural number", i.Value)
	}
	return nil
}

// AssertNotNegative fails if the integer is below zero.
func (i Int) AssertNotNegative() error {
	if i.Value < 0 {
		return offsetErr(ErrValueRestriction, i.Pos, "%d is negative", i.Value)
	}
	return nil
}

// Real represents a PDF real number
type Real struct {
	Value float64
	Pos   int64
}

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(r.Value, 'f', -1, 64) }
func (r Real) Offset() int64    { return r.Pos }
func (Real) isObject()          {}

// String represents a PDF string. Value holds bytes, not text; see Text.
type String struct {
	Value []byte
	Hex   bool // written as <...> in the file
	Pos   int64
}

func (s String) Type() ObjectType { return ObjString }
func (s String) Offset() int64    { return s.Pos }
func (String) isObject()          {}

func (s String) String() string {
	if s.Hex {
		return fmt.Sprintf("<%X>", s.Value)
	}
	return "(" + string(s.Value) + ")"
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text decodes the string as a PDF text string: UTF-16BE when it starts
// with the FE FF byte order mark, UTF-8 with the EF BB BF mark, and a
// single-byte encoding otherwise.
func (s String) Text() (string, error) {
	switch {
	case bytes.HasPrefix(s.Value, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(s.Value)
		if err != nil {
			return "", fmt.Errorf("decode UTF-16 text string: %w", err)
		}
		return string(out), nil
	case bytes.HasPrefix(s.Value, utf8BOM):
		return string(s.Value[len(utf8BOM):]), nil
	default:
		return decodePDFDoc(s.Value), nil
	}
}

// pdfDocDiff holds the PDFDocEncoding code points that differ from
// ISO 8859-1. Undefined codes (0x7F, 0x9F, 0xAD) fall through to Latin-1.
var pdfDocDiff = map[byte]rune{
	0x18: '\u02D8', 0x19: '\u02C7', 0x1A: '\u02C6', 0x1B: '\u02D9',
	0x1C: '\u02DD', 0x1D: '\u02DB', 0x1E: '\u02DA', 0x1F: '\u02DC',
	0x80: '\u2022', 0x81: '\u2020', 0x82: '\u2021', 0x83: '\u2026',
	0x84: '\u2014', 0x85: '\u2013', 0x86: '\u0192', 0x87: '\u2044',
	0x88: '\u2039', 0x89: '\u203A', 0x8A: '\u2212', 0x8B: '\u2030',
	0x8C: '\u201E', 0x8D: '\u201C', 0x8E: '\u201D', 0x8F: '\u2018',
	0x90: '\u2019', 0x91: '\u201A', 0x92: '\u2122', 0x93: '\uFB01',
	0x94: '\uFB02', 0x95: '\u0141', 0x96: '\u0152', 0x97: '\u0160',
	0x98: '\u0178', 0x99: '\u017D', 0x9A: '\u0131', 0x9B: '\u0142',
	0x9C: '\u0153', 0x9D: '\u0161', 0x9E: '\u017E', 0xA0: '\u20AC',
}

func decodePDFDoc(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if r, ok := pdfDocDiff[c]; ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return sb.String()
}

// Name represents a PDF name
type Name struct {
	Value string
	Pos   int64
}

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + n.Value }
func (n Name) Offset() int64    { return n.Pos }
func (Name) isObject()          {}

// Array represents a PDF array
type Array struct {
	Elems []Object
	Pos   int64
}

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) Offset() int64    { return a.Pos }
func (Array) isObject()          {}

func (a Array) String() string {
	parts := make([]string, 0, len(a.Elems))
	for _, obj := range a.Elems {
		parts = append(parts, obj.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the length of the array
func (a Array) Len() int {
	return len(a.Elems)
}

// Get retrieves an element at the given index
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a.Elems) {
		return nil
	}
	return a.Elems[index]
}

// GetInt retrieves an integer at the given index
func (a Array) GetInt(index int) (Int, bool) {
	i, ok := a.Get(index).(Int)
	return i, ok
}

// GetName retrieves a name at the given index
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// Dict represents a PDF dictionary
type Dict struct {
	Entries map[string]Object
	Pos     int64
}

func (d Dict) Type() ObjectType { return ObjDict }
func (d Dict) Offset() int64    { return d.Pos }
func (Dict) isObject()          {}

func (d Dict) String() string {
	keys := d.Keys()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("/%s %s", key, d.Entries[key].String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get retrieves a value from the dictionary, or nil
func (d Dict) Get(key string) Object {
	return d.Entries[key]
}

// Has checks if a key exists in the dictionary
func (d Dict) Has(key string) bool {
	_, ok := d.Entries[key]
	return ok
}

// Len returns the number of entries
func (d Dict) Len() int {
	return len(d.Entries)
}

// Keys returns all keys in the dictionary
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d.Entries))
	for k := range d.Entries {
		keys = append(keys, k)
	}
	return keys
}

// GetName retrieves a name value
func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d.Entries[key].(Name)
	return n, ok
}

// GetInt retrieves an integer value
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d.Entries[key].(Int)
	return i, ok
}

// GetDict retrieves a dictionary value
func (d Dict) GetDict(key string) (Dict, bool) {
	dict, ok := d.Entries[key].(Dict)
	return dict, ok
}

// GetArray retrieves an array value
func (d Dict) GetArray(key string) (Array, bool) {
	arr, ok := d.Entries[key].(Array)
	return arr, ok
}

// GetString retrieves a string value
func (d Dict) GetString(key string) (String, bool) {
	s, ok := d.Entries[key].(String)
	return s, ok
}

// GetIndirectRef retrieves an indirect reference
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) {
	ref, ok := d.Entries[key].(IndirectRef)
	return ref, ok
}

// AssertWithKey checks that every key is present. Each missing key
// contributes its own ErrDictKeyNotFound to the joined error.
func (d Dict) AssertWithKey(keys ...string) error {
	var errs []error
	for _, key := range keys {
		if !d.Has(key) {
			errs = append(errs, offsetErr(ErrDictKeyNotFound, d.Pos, "/%s", key))
		}
	}
	return errors.Join(errs...)
}

// EnsureType compares the dictionary's /Type name with expected. The
// caller is responsible for asserting that /Type exists.
func (d Dict) EnsureType(expected string) error {
	name, err := Ensure[Name](d.Get("Type"))
	if err != nil {
		return fmt.Errorf("/Type entry: %w", err)
	}
	if name.Value != expected {
		return offsetErr(ErrDictTypeMismatch, d.Pos, "expected /%s, got /%s", expected, name.Value)
	}
	return nil
}

// IndirectRef represents an indirect object reference
type IndirectRef struct {
	Number     int
	Generation int
	Pos        int64
}

func (r IndirectRef) Type() ObjectType { return ObjIndirectRef }
func (r IndirectRef) Offset() int64    { return r.Pos }
func (IndirectRef) isObject()          {}

func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject represents "N G obj ... endobj"
type IndirectObject struct {
	Number     int
	Generation int
	Object     Object
	Pos        int64
}

func (o IndirectObject) Type() ObjectType { return ObjIndirectObject }
func (o IndirectObject) Offset() int64    { return o.Pos }
func (IndirectObject) isObject()          {}

func (o IndirectObject) String() string {
	return fmt.Sprintf("%d %d obj %s endobj", o.Number, o.Generation, o.Object.String())
}

// Stream represents a stream object. The content is not read at parse
// time; DataOffset records where it begins and GetStream reads it.
type Stream struct {
	Number     int
	Generation int
	Dict       Dict
	DataOffset int64
	Pos        int64
}

func (s Stream) Type() ObjectType { return ObjStream }
func (s Stream) Offset() int64    { return s.Pos }
func (Stream) isObject()          {}

func (s Stream) String() string {
	return fmt.Sprintf("%d %d obj %s stream@%d", s.Number, s.Generation, s.Dict.String(), s.DataOffset)
}
