// Package pdftest builds small classic-xref PDF files in memory with
// correct byte offsets, for use by tests.
package pdftest

import (
	"bytes"
	"fmt"
)

type entry struct {
	body string
	gen  int
	free bool
}

// Builder accumulates objects 1..n in order. Object 0 is always the head
// of the free list.
type Builder struct {
	Header       string // defaults to "%PDF-1.7"
	TrailerExtra string // extra trailer entries, written after /Size and /Root
	Root         string // defaults to "1 0 R"
	Size         int    // trailer /Size; defaults to the entry count

	objects []entry
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Object appends the complete text of the next object, "N 0 obj ... endobj"
// included, with generation 0 in its xref entry.
func (b *Builder) Object(body string) *Builder {
	return b.ObjectGen(0, body)
}

// ObjectGen is Object with an explicit generation for the xref entry.
func (b *Builder) ObjectGen(gen int, body string) *Builder {
	b.objects = append(b.objects, entry{body: body, gen: gen})
	return b
}

// Free appends a free xref entry with no object body.
func (b *Builder) Free() *Builder {
	b.objects = append(b.objects, entry{free: true})
	return b
}

// File is a built document.
type File struct {
	Data       []byte
	XRefOffset int64   // offset of the "xref" keyword
	EntryStart int64   // offset of the entry for object 0
	Offsets    []int64 // Offsets[n] is where object n starts; 0 for free entries
}

// Reader returns a fresh reader over the file's bytes.
func (f *File) Reader() *bytes.Reader {
	return bytes.NewReader(f.Data)
}

// Build lays out header, objects, xref table and trailer.
func (b *Builder) Build() *File {
	header := b.Header
	if header == "" {
		header = "%PDF-1.7"
	}
	root := b.Root
	if root == "" {
		root = "1 0 R"
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int64, len(b.objects)+1)
	for i, obj := range b.objects {
		if obj.free {
			continue
		}
		offsets[i+1] = int64(buf.Len())
		buf.WriteString(obj.body)
		buf.WriteString("\n")
	}

	f := &File{Offsets: offsets}
	f.XRefOffset = int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	f.EntryStart = int64(buf.Len())
	buf.WriteString("0000000000 65535 f\r\n")
	for i, obj := range b.objects {
		if obj.free {
			buf.WriteString("0000000000 00001 f\r\n")
			continue
		}
		fmt.Fprintf(&buf, "%010d %05d n\r\n", offsets[i+1], obj.gen)
	}

	size := b.Size
	if size == 0 {
		size = len(b.objects) + 1
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s%s >>\n", size, root, b.TrailerExtra)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", f.XRefOffset)

	f.Data = buf.Bytes()
	return f
}
