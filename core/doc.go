// Package core reads the structure of a PDF file: it tokenizes byte windows,
// parses them into typed objects, and locates objects through the
// cross-reference table without loading the whole file.
//
// # Object Types
//
// [Object] is a closed set of types, each carrying the byte offset of its
// first token:
//
//   - [Null], [Bool], [Int], [Real], [String], [Name]
//   - [Array] and [Dict]
//   - [IndirectRef] ("1 0 R") and [IndirectObject] ("1 0 obj ... endobj")
//   - [Stream], a dictionary plus the offset where its raw content begins
//
// [Ensure] narrows an Object to a concrete type and reports
// [ErrObjectTypeMismatch] with the object's offset otherwise.
//
// # Lexing and Parsing
//
// The [Lexer] works on a byte slice that starts on an object boundary. The
// "R" and "obj" keywords fold the two preceding integers into a single
// token, and lexing stops after endobj or at the start of stream content.
// [NewParser] refuses a window that opens an obj without closing it
// ([ErrIndirectObjMismatch]); [Parser.Parse] yields exactly one object.
//
// # Locating Objects
//
// [ParseTrailer] reads the file tail for the startxref offset and the
// trailer dictionary. [NewXRefTable] reads the subsection header at that
// offset; [XRefTable.ByteOffset] then reads one 20-byte entry on demand.
// [ResolveIndirect] reads a window at the object's offset and grows it
// while [IsWindowTooSmall] holds for the failure.
//
// # Errors
//
// Failures wrap the sentinel errors declared in this package, usually
// inside an [OffsetError], so callers test them with errors.Is:
//
//	_, err := core.ResolveIndirect(f, xref, ref, core.DefaultWindow)
//	if errors.Is(err, core.ErrGenerationNumberMismatch) {
//	    ...
//	}
package core
