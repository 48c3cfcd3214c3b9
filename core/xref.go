package core

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/tsawler/pdfstruct/logging"
)

const (
	// xrefEntrySize is the fixed width of one entry:
	// "nnnnnnnnnn ggggg n" followed by a two byte EOL.
	xrefEntrySize = 20

	// xrefEntryRead covers offset, space, generation, space and type byte.
	xrefEntryRead = 18

	// xrefHeaderRead is enough for "xref", its EOL and the subsection line.
	xrefHeaderRead = 64
)

// XRefEntry represents a single cross-reference table entry
type XRefEntry struct {
	Offset     int64 // Byte offset in file (for in-use objects) or next free object number (for free objects)
	Generation int   // Generation number
	InUse      bool  // true if object is in use, false if free
}

// XRefTable describes one cross-reference subsection. Entries are not held
// in memory; each lookup reads its fixed-width entry from the file.
type XRefTable struct {
	from              int
	entryNum          int
	actualStartOffset int64
}

// NewXRefTable reads the "xref" keyword at offset and the subsection
// header line that follows it.
func NewXRefTable(src io.ReadSeeker, offset int64) (*XRefTable, error) {
	buf, err := readPartially(src, offset, xrefHeaderRead)
	if err != nil {
		return nil, fmt.Errorf("failed to read xref header: %w", err)
	}

	afterKeyword, ok := ExtractAfter(buf, []byte("xref"))
	if !ok {
		return nil, offsetErr(ErrXRefNotFound, offset, "")
	}
	section, ok := ExtractAfterEOL(afterKeyword)
	if !ok {
		return nil, offsetErr(ErrXRefNotFound, offset, "no line boundary after xref")
	}
	sectionOffset := offset + int64(len(buf)-len(section))

	line, ok := CutBeforeEOL(section)
	if !ok {
		return nil, offsetErr(ErrSubsectionNotFound, sectionOffset, "")
	}
	from, entryNum, err := parseSubsectionLine(line, sectionOffset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subsection line: %w", err)
	}

	entries, _ := ExtractAfterEOL(section)
	table := &XRefTable{
		from:              from,
		entryNum:          entryNum,
		actualStartOffset: offset + int64(len(buf)-len(entries)),
	}

	// the count may not claim more entries than the rest of the file holds;
	// one short final entry is left for Entry to report as truncated
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get file size: %w", err)
	}
	if limit := (size-table.actualStartOffset)/xrefEntrySize + 1; int64(entryNum) > limit {
		return nil, offsetErr(ErrValueRestriction, sectionOffset, "%d entries, at most %d fit in the file", entryNum, limit)
	}

	logging.Logger().Debug("xref subsection",
		slog.Int("from", table.from),
		slog.Int("entries", table.entryNum),
		slog.Int64("start", table.actualStartOffset))

	return table, nil
}

// parseSubsectionLine parses "<from> <count>". Each number is parsed as its
// own object so that error offsets point at the number itself.
func parseSubsectionLine(line []byte, lineOffset int64) (int, int, error) {
	fromBuf, ok := CutFrom(line, []byte(" "))
	if !ok {
		return 0, 0, offsetErr(ErrSubsectionNotFound, lineOffset, "%q", line)
	}
	countBuf, _ := ExtractAfter(line, []byte(" "))
	countOffset := lineOffset + int64(len(line)-len(countBuf))

	from, err := parseInteger(fromBuf, lineOffset)
	if err != nil {
		return 0, 0, err
	}
	if err := from.AssertNotNegative(); err != nil {
		return 0, 0, err
	}

	count, err := parseInteger(countBuf, countOffset)
	if err != nil {
		return 0, 0, err
	}
	if err := count.AssertNatural(); err != nil {
		return 0, 0, err
	}
	if from.Value > int64(math.MaxInt)-count.Value {
		return 0, 0, offsetErr(ErrValueRestriction, countOffset, "subsection %d %d overflows", from.Value, count.Value)
	}

	return int(from.Value), int(count.Value), nil
}

// parseInteger parses buf as exactly one Integer object.
func parseInteger(buf []byte, offset int64) (Int, error) {
	p, err := NewParser(buf, offset)
	if err != nil {
		return Int{}, err
	}
	obj, err := p.Parse()
	if err != nil {
		return Int{}, err
	}
	return Ensure[Int](obj)
}

// From returns the first object number covered by the table.
func (x *XRefTable) From() int {
	return x.from
}

// EntryNum returns the number of entries in the subsection.
func (x *XRefTable) EntryNum() int {
	return x.entryNum
}

// ActualStartOffset returns the byte offset of the first entry.
func (x *XRefTable) ActualStartOffset() int64 {
	return x.actualStartOffset
}

// Contains reports whether objNum lies in [From, From+EntryNum).
func (x *XRefTable) Contains(objNum int) bool {
	return x.from <= objNum && objNum < x.from+x.entryNum
}

// EntryOffset returns the byte offset of objNum's entry. The caller must
// check Contains first.
func (x *XRefTable) EntryOffset(objNum int) int64 {
	return x.actualStartOffset + int64(objNum-x.from)*xrefEntrySize
}

// Entry reads and parses the entry for objNum, free or in use.
func (x *XRefTable) Entry(src io.ReadSeeker, objNum int) (XRefEntry, error) {
	if !x.Contains(objNum) {
		return XRefEntry{}, offsetErr(ErrNotContain, x.actualStartOffset,
			"object %d outside [%d, %d)", objNum, x.from, x.from+x.entryNum)
	}

	entryOffset := x.EntryOffset(objNum)
	buf, err := readPartially(src, entryOffset, xrefEntryRead)
	if err != nil {
		return XRefEntry{}, fmt.Errorf("failed to read xref entry for object %d: %w", objNum, err)
	}
	if len(buf) != xrefEntryRead {
		return XRefEntry{}, offsetErr(ErrXRefEntryTruncated, entryOffset, "got %d of %d bytes", len(buf), xrefEntryRead)
	}

	return parseEntry(buf, entryOffset)
}

// ByteOffset returns the file offset of the in-use object (objNum, genNum).
func (x *XRefTable) ByteOffset(src io.ReadSeeker, objNum, genNum int) (int64, error) {
	entry, err := x.Entry(src, objNum)
	if err != nil {
		return 0, err
	}

	entryOffset := x.EntryOffset(objNum)
	if !entry.InUse {
		return 0, offsetErr(ErrNotSupportedEntryType, entryOffset+17, "object %d is free", objNum)
	}
	if entry.Generation != genNum {
		return 0, offsetErr(ErrGenerationNumberMismatch, entryOffset+11,
			"object %d: requested %d, entry has %d", objNum, genNum, entry.Generation)
	}
	return entry.Offset, nil
}

// parseEntry parses the first 18 bytes of an entry:
// nnnnnnnnnn = 10-digit offset, ggggg = 5-digit generation, n/f = in use or free
func parseEntry(buf []byte, entryOffset int64) (XRefEntry, error) {
	offset, err := parseInteger(buf[0:10], entryOffset)
	if err != nil {
		return XRefEntry{}, err
	}
	if err := offset.AssertNotNegative(); err != nil {
		return XRefEntry{}, err
	}

	gen, err := parseInteger(buf[11:16], entryOffset+11)
	if err != nil {
		return XRefEntry{}, err
	}
	if err := gen.AssertNotNegative(); err != nil {
		return XRefEntry{}, err
	}

	entry := XRefEntry{Offset: offset.Value, Generation: int(gen.Value)}
	switch buf[17] {
	case 'n':
		entry.InUse = true
	case 'f':
		entry.InUse = false
	default:
		return XRefEntry{}, offsetErr(ErrInvalidEntryType, entryOffset+17, "type byte %q", buf[17])
	}
	return entry, nil
}
