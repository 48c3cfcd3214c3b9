// Package resolver expands indirect references ("5 0 R") into the objects
// they point to.
//
// An ObjectResolver sits on top of anything that can look up a single
// reference, usually a *reader.Reader:
//
//	r := resolver.NewResolver(doc)
//	obj, err := r.Resolve(ref)
//
// Resolve follows a chain of references until it reaches a direct object.
// ResolveDeep walks the result as well, replacing every reference found in
// dictionaries, arrays and stream dictionaries. Stream content is never
// read.
//
//	expanded, err := r.ResolveDeep(catalog)
//
// # Cycles and depth
//
// A reference that leads back to itself while it is being expanded fails
// with ErrCircularReference. Nesting beyond the configured depth (100 by
// default) fails with ErrMaxDepth:
//
//	r := resolver.NewResolver(doc, resolver.WithMaxDepth(50))
//
// ResolveDict, ResolveArray and ResolveReferenceDeep are typed shortcuts
// around ResolveDeep. ResolveDictKey resolves a single dictionary value one
// level and reports a missing key as nil.
package resolver
