package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tsawler/pdfstruct/internal/pdftest"
)

func readFixtureStream(t *testing.T, f *pdftest.File, num int) ([]byte, error) {
	t.Helper()
	src := f.Reader()
	xref, err := NewXRefTable(src, f.XRefOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, err := IndirectRef{Number: num}.GetIndirectObj(src, xref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream, err := Ensure[Stream](obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return stream.GetStream(src, xref)
}

// TestStreamLength tests that direct and indirect lengths read the same bytes
func TestStreamLength(t *testing.T) {
	content := "BT /F1 12 Tf (hello world) Tj ET"

	direct := pdftest.New().
		Object("1 0 obj\n<< /Length 32 >>\nstream\r\n" + content + "\r\nendstream\nendobj").
		Build()
	indirect := pdftest.New().
		Object("1 0 obj\n<< /Length 2 0 R >>\nstream\n" + content + "\nendstream\nendobj").
		Object("2 0 obj\n32\nendobj").
		Build()

	a, err := readFixtureStream(t, direct, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := readFixtureStream(t, indirect, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a) != content {
		t.Errorf("got %q, want %q", a, content)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("direct %q and indirect %q lengths disagree", a, b)
	}
}

// TestStreamBinaryContent tests that content bytes are returned untouched
func TestStreamBinaryContent(t *testing.T) {
	content := "\x00\xff endobj )(\r\n>>"
	f := pdftest.New().
		Object("1 0 obj\n<< /Length 16 /Filter /FlateDecode >>\nstream\n" + content + "\nendstream\nendobj").
		Build()

	got, err := readFixtureStream(t, f, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != content {
		t.Errorf("got %q, want %q", got, content)
	}
}

// TestStreamLengthErrors tests invalid /Length values
func TestStreamLengthErrors(t *testing.T) {
	tests := []struct {
		name string
		f    *pdftest.File
		want error
	}{
		{
			"negative",
			pdftest.New().
				Object("1 0 obj\n<< /Length -1 >>\nstream\nabc\nendstream\nendobj").
				Build(),
			ErrInvalidStreamLength,
		},
		{
			"not an integer",
			pdftest.New().
				Object("1 0 obj\n<< /Length /Big >>\nstream\nabc\nendstream\nendobj").
				Build(),
			ErrObjectTypeMismatch,
		},
		{
			"indirect not an integer",
			pdftest.New().
				Object("1 0 obj\n<< /Length 2 0 R >>\nstream\nabc\nendstream\nendobj").
				Object("2 0 obj\n(3)\nendobj").
				Build(),
			ErrObjectTypeMismatch,
		},
		{
			"indirect missing",
			pdftest.New().
				Object("1 0 obj\n<< /Length 7 0 R >>\nstream\nabc\nendstream\nendobj").
				Build(),
			ErrNotContain,
		},
		{
			"longer than file",
			pdftest.New().
				Object("1 0 obj\n<< /Length 100000 >>\nstream\nabc\nendstream\nendobj").
				Build(),
			ErrShortStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readFixtureStream(t, tt.f, 1)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// TestStreamWithoutLength tests a Stream value built by hand
func TestStreamWithoutLength(t *testing.T) {
	s := Stream{Dict: Dict{Entries: map[string]Object{}}}
	_, err := s.Length(bytes.NewReader(nil), &XRefTable{}, DefaultWindow)
	if !errors.Is(err, ErrDictKeyNotFound) {
		t.Errorf("got %v, want ErrDictKeyNotFound", err)
	}
}
