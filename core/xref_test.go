package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tsawler/pdfstruct/internal/pdftest"
)

// TestXRefTableHeader tests parsing of the subsection line
func TestXRefTableHeader(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		from        int
		entryNum    int
		startOffset int64
	}{
		{"LF", "xref\n3 2\n0000000017 00000 n\r\n0000000081 00002 n\r\n", 3, 2, 9},
		{"CRLF", "xref\r\n0 1\r\n0000000000 65535 f\r\n", 0, 1, 11},
		{"trailing space", "xref\n0 1 \n0000000000 65535 f\r\n", 0, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewXRefTable(bytes.NewReader([]byte(tt.input)), 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.From() != tt.from {
				t.Errorf("From() = %d, want %d", table.From(), tt.from)
			}
			if table.EntryNum() != tt.entryNum {
				t.Errorf("EntryNum() = %d, want %d", table.EntryNum(), tt.entryNum)
			}
			if table.ActualStartOffset() != tt.startOffset {
				t.Errorf("ActualStartOffset() = %d, want %d", table.ActualStartOffset(), tt.startOffset)
			}
		})
	}
}

// TestXRefTableHeaderErrors tests malformed xref headers
func TestXRefTableHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no keyword", "trailer\n<< >>\n", ErrXRefNotFound},
		{"no EOL after keyword", "xref", ErrXRefNotFound},
		{"no subsection EOL", "xref\n0 2", ErrSubsectionNotFound},
		{"single number", "xref\n0\n", ErrSubsectionNotFound},
		{"negative start", "xref\n-1 2\n", ErrValueRestriction},
		{"zero count", "xref\n0 0\n", ErrValueRestriction},
		{"count not integer", "xref\n0 /A\n", ErrObjectTypeMismatch},
		{"count past end of file", "xref\n0 5\n0000000000 65535 f\r\n", ErrValueRestriction},
		{"huge count", "xref\n0 999999999999\n0000000000 65535 f\r\n", ErrValueRestriction},
		{"range overflows", "xref\n9223372036854775807 1\n0000000000 65535 f\r\n", ErrValueRestriction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewXRefTable(bytes.NewReader([]byte(tt.input)), 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// TestXRefTableContains tests the half-open object number range
func TestXRefTableContains(t *testing.T) {
	src := bytes.NewReader([]byte("xref\n3 2\n0000000017 00000 n\r\n0000000081 00002 n\r\n"))
	table, err := NewXRefTable(src, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for n, want := range map[int]bool{2: false, 3: true, 4: true, 5: false} {
		if got := table.Contains(n); got != want {
			t.Errorf("Contains(%d) = %v, want %v", n, got, want)
		}
	}

	entry, err := table.Entry(src, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != (XRefEntry{Offset: 81, Generation: 2, InUse: true}) {
		t.Errorf("got %+v", entry)
	}

	for _, n := range []int{2, 5} {
		_, err := table.ByteOffset(src, n, 0)
		if !errors.Is(err, ErrNotContain) {
			t.Errorf("ByteOffset(%d): got %v, want ErrNotContain", n, err)
		}
	}
}

// TestXRefTableEntryOffset tests that entries are located arithmetically
func TestXRefTableEntryOffset(t *testing.T) {
	b := pdftest.New()
	for i := 1; i <= 12; i++ {
		b.Object("<< >>")
	}
	f := b.Build()

	table, err := NewXRefTable(f.Reader(), f.XRefOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.ActualStartOffset() != f.EntryStart {
		t.Fatalf("ActualStartOffset() = %d, want %d", table.ActualStartOffset(), f.EntryStart)
	}

	for n := table.From(); n < table.From()+table.EntryNum(); n++ {
		want := table.ActualStartOffset() + int64(n-table.From())*20
		if got := table.EntryOffset(n); got != want {
			t.Errorf("EntryOffset(%d) = %d, want %d", n, got, want)
		}
	}
}

// TestXRefTableByteOffset tests lookup against a generated file
func TestXRefTableByteOffset(t *testing.T) {
	f := pdftest.New().
		Object("1 0 obj\n<< /Type /Catalog >>\nendobj").
		Free().
		ObjectGen(3, "3 3 obj\n42\nendobj").
		Build()
	src := f.Reader()

	table, err := NewXRefTable(src, f.XRefOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offset, err := table.ByteOffset(src, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offset != f.Offsets[1] {
		t.Errorf("ByteOffset(1, 0) = %d, want %d", offset, f.Offsets[1])
	}

	offset, err = table.ByteOffset(src, 3, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offset != f.Offsets[3] {
		t.Errorf("ByteOffset(3, 3) = %d, want %d", offset, f.Offsets[3])
	}

	tests := []struct {
		name string
		num  int
		gen  int
		want error
	}{
		{"free list head", 0, 65535, ErrNotSupportedEntryType},
		{"free entry", 2, 1, ErrNotSupportedEntryType},
		{"wrong generation", 1, 1, ErrGenerationNumberMismatch},
		{"past the end", 4, 0, ErrNotContain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.ByteOffset(src, tt.num, tt.gen)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// TestXRefTableEntryErrors tests damaged entries
func TestXRefTableEntryErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"truncated", "xref\n0 2\n0000000000 65535 f\r\n00000001", ErrXRefEntryTruncated},
		{"bad type byte", "xref\n0 2\n0000000000 65535 f\r\n0000000010 00000 x\r\n", ErrInvalidEntryType},
		{"bad offset", "xref\n0 2\n0000000000 65535 f\r\n00000abcde 00000 n\r\n", ErrUndefinedKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := bytes.NewReader([]byte(tt.input))
			table, err := NewXRefTable(src, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err = table.Entry(src, 1)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
