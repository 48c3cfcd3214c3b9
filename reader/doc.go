// Package reader provides PDF document opening and object resolution.
//
// This package orchestrates the lower-level core package: it validates the
// header, bootstraps the trailer and cross-reference table, and checks
// the document catalog before handing out a Reader.
//
// # Opening PDF Files
//
// Use [Open] to open a PDF file for reading:
//
//	doc, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
// Or use [NewReader] with any io.ReadSeeker. Options tune the resolve
// window and the logger:
//
//	doc, err := reader.NewReader(f,
//	    reader.WithWindow(core.Window{Initial: 4096, Step: 4096}),
//	    reader.WithLogger(slog.Default()))
//
// # Document Information
//
// The Reader provides access to document structure:
//
//   - Version() - PDF version from the header (e.g., 1.7)
//   - Catalog() - document catalog dictionary
//   - Info() - document info dictionary (metadata)
//   - Metadata() - decoded text entries of the info dictionary
//   - Trailer() - parsed trailer
//
// # Object Resolution
//
// The Reader resolves indirect object references:
//
//   - IndirectObject(ref) - the "N G obj" object or stream at ref
//   - ResolveReference(ref) - the object ref points to
//   - Resolve(obj) - resolve if indirect, otherwise return as-is
//   - ResolveDeep(obj) - recursively resolve all references
//   - ReadStream(stream) - raw, undecoded stream content
//
// Nothing is cached; every call reads from the source again.
package reader
