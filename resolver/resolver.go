package resolver

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfstruct/core"
)

var (
	// ErrCircularReference is returned when a reference leads back to an
	// object that is still being expanded.
	ErrCircularReference = errors.New("circular reference detected")

	// ErrMaxDepth is returned when expansion nests deeper than the limit.
	ErrMaxDepth = errors.New("maximum recursion depth exceeded")
)

// ObjectResolver resolves indirect references in PDF objects
// It can recursively resolve references in dictionaries and arrays.
// An ObjectResolver is not safe for concurrent use.
type ObjectResolver struct {
	reader       ObjectReader
	visited      map[int]bool // Cycle detection
	maxDepth     int          // Maximum recursion depth
	currentDepth int          // Current recursion depth
}

// ObjectReader interface allows the resolver to work with any reader.
// ResolveReference returns the object a reference points to, with the
// "N G obj" wrapper already removed.
type ObjectReader interface {
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// Option configures the resolver
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum recursion depth (default: 100)
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// NewResolver creates a new object resolver
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		visited:  make(map[int]bool),
		maxDepth: 100,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve follows obj if it is a reference. Nested references in the
// result are left alone.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	return r.resolve(obj, false)
}

// ResolveDeep recursively resolves all indirect references in dictionaries,
// arrays and stream dictionaries. This will fully expand the object tree.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolve(obj, true)
}

func (r *ObjectResolver) resolve(obj core.Object, deep bool) (core.Object, error) {
	// cycles are tracked per top-level call
	if r.currentDepth == 0 {
		r.visited = make(map[int]bool)
	}

	if r.currentDepth >= r.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrMaxDepth, r.maxDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		if r.visited[v.Number] {
			return nil, fmt.Errorf("%w for object %d", ErrCircularReference, v.Number)
		}
		r.visited[v.Number] = true
		// unmarked on return so the same object may appear in sibling branches
		defer delete(r.visited, v.Number)

		target, err := r.reader.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference %v: %w", v, err)
		}
		if _, chained := target.(core.IndirectRef); !deep && !chained {
			return target, nil
		}
		return r.descend(target, deep)

	case core.IndirectObject:
		if !deep {
			return v, nil
		}
		inner, err := r.descend(v.Object, deep)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve object %d %d: %w", v.Number, v.Generation, err)
		}
		v.Object = inner
		return v, nil

	case core.Dict:
		if !deep {
			return v, nil
		}
		out := core.Dict{Entries: make(map[string]core.Object, len(v.Entries)), Pos: v.Pos}
		for key, value := range v.Entries {
			expanded, err := r.descend(value, deep)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dict key %s: %w", key, err)
			}
			out.Entries[key] = expanded
		}
		return out, nil

	case core.Array:
		if !deep {
			return v, nil
		}
		out := core.Array{Elems: make([]core.Object, len(v.Elems)), Pos: v.Pos}
		for i, elem := range v.Elems {
			expanded, err := r.descend(elem, deep)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve array element %d: %w", i, err)
			}
			out.Elems[i] = expanded
		}
		return out, nil

	case core.Stream:
		if !deep {
			return v, nil
		}
		dict, err := r.descend(v.Dict, deep)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stream dict: %w", err)
		}
		// data offset and object number are kept
		v.Dict = dict.(core.Dict)
		return v, nil

	default:
		return obj, nil
	}
}

func (r *ObjectResolver) descend(obj core.Object, deep bool) (core.Object, error) {
	r.currentDepth++
	defer func() { r.currentDepth-- }()
	return r.resolve(obj, deep)
}

// Reset clears the visited map and depth counter
// Call this between independent resolution operations
func (r *ObjectResolver) Reset() {
	r.visited = make(map[int]bool)
	r.currentDepth = 0
}

// ResolveDict is a convenience method for resolving dictionaries
// It resolves the dictionary and all its values (deep resolution)
func (r *ObjectResolver) ResolveDict(dict core.Dict) (core.Dict, error) {
	defer r.Reset()
	resolved, err := r.ResolveDeep(dict)
	if err != nil {
		return core.Dict{}, err
	}
	return resolved.(core.Dict), nil
}

// ResolveArray is a convenience method for resolving arrays
// It resolves all elements in the array (deep resolution)
func (r *ObjectResolver) ResolveArray(arr core.Array) (core.Array, error) {
	defer r.Reset()
	resolved, err := r.ResolveDeep(arr)
	if err != nil {
		return core.Array{}, err
	}
	return resolved.(core.Array), nil
}

// ResolveReference resolves a single indirect reference
// This is a shallow resolution - it returns the referenced object but doesn't recurse
func (r *ObjectResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	defer r.Reset()
	return r.reader.ResolveReference(ref)
}

// ResolveReferenceDeep resolves a reference and all nested references
func (r *ObjectResolver) ResolveReferenceDeep(ref core.IndirectRef) (core.Object, error) {
	defer r.Reset()
	return r.ResolveDeep(ref)
}

// ResolveDictKey resolves dict[key] one level, returning nil when the key
// is absent.
func (r *ObjectResolver) ResolveDictKey(dict core.Dict, key string) (core.Object, error) {
	obj := dict.Get(key)
	if obj == nil {
		return nil, nil
	}
	defer r.Reset()
	return r.Resolve(obj)
}
