package core

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/tsawler/pdfstruct/internal/pdftest"
	"github.com/tsawler/pdfstruct/logging"
)

func resolveFixture(t *testing.T, f *pdftest.File, ref IndirectRef, w Window) (Object, error) {
	t.Helper()
	src := f.Reader()
	xref, err := NewXRefTable(src, f.XRefOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ResolveIndirect(src, xref, ref, w)
}

func captureLogs(t *testing.T) *logging.BufferedHandler {
	t.Helper()
	h := logging.NewBufferedHandler(slog.LevelDebug)
	logging.SetLogger(slog.New(h))
	t.Cleanup(func() { logging.SetLogger(nil) })
	return h
}

// TestResolveIndirect tests resolution of a small object
func TestResolveIndirect(t *testing.T) {
	f := pdftest.New().
		Object("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj").
		Object("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj").
		Build()
	src := f.Reader()
	xref, err := NewXRefTable(src, f.XRefOffset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obj, err := IndirectRef{Number: 2}.GetIndirectObj(src, xref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ind, err := Ensure[IndirectObject](obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.Pos != f.Offsets[2] {
		t.Errorf("offset = %d, want %d", ind.Pos, f.Offsets[2])
	}
	dict, err := Ensure[Dict](ind.Object)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := dict.EnsureType("Pages"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestResolveIndirectGrowsWindow tests objects larger than the first read
func TestResolveIndirectGrowsWindow(t *testing.T) {
	pad := strings.Repeat("x", 500)
	f := pdftest.New().
		Object("1 0 obj\n<< /Type /Catalog /Pad (" + pad + ") >>\nendobj").
		Build()

	tests := []struct {
		name string
		w    Window
	}{
		{"default", DefaultWindow},
		{"tiny steps", Window{Initial: 8, Step: 8}},
		{"zero value", Window{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)

			obj, err := resolveFixture(t, f, IndirectRef{Number: 1}, tt.w)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			dict, err := Ensure[Dict](obj.(IndirectObject).Object)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			s, ok := dict.GetString("Pad")
			if !ok || string(s.Value) != pad {
				t.Errorf("expected the full /Pad string, got %v", dict.Get("Pad"))
			}
			if !logs.Contains("growing resolve window") {
				t.Error("expected the window to grow")
			}
		})
	}
}

// TestResolveIndirectWindowSplitsNumber tests a first window that ends
// between a sign or point and the digits after it
func TestResolveIndirectWindowSplitsNumber(t *testing.T) {
	// "1 0 obj\n[" plus 95 "1 " puts the split byte at window index 199
	filler := strings.Repeat("1 ", 95)

	tests := []struct {
		name  string
		split string
		want  Object
	}{
		{"minus", "-", Int{Value: -5}},
		{"plus", "+", Int{Value: 5}},
		{"point", ".", Real{Value: 0.5}},
		{"minus point", "-.", Real{Value: -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := "1 0 obj\n[" + filler + tt.split + "5 ]\nendobj"
			if body[199:200] != tt.split[:1] {
				t.Fatalf("fixture misaligned: byte 199 is %q", body[199])
			}
			f := pdftest.New().Object(body).Build()
			logs := captureLogs(t)

			obj, err := resolveFixture(t, f, IndirectRef{Number: 1}, DefaultWindow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			arr, err := Ensure[Array](obj.(IndirectObject).Object)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if arr.Len() != 96 {
				t.Fatalf("got %d elements, want 96", arr.Len())
			}
			last := arr.Get(95)
			if last.Type() != tt.want.Type() || last.String() != tt.want.String() {
				t.Errorf("last element = %v, want %v", last, tt.want)
			}
			if !logs.Contains("growing resolve window") {
				t.Error("expected the window to grow")
			}
		})
	}
}

// TestResolveIndirectWindowBeforeHeader tests windows too short to hold
// the "N G obj" header
func TestResolveIndirectWindowBeforeHeader(t *testing.T) {
	f := pdftest.New().
		Object("1 0 obj\n<< /Type /Catalog >>\nendobj").
		Build()

	for _, initial := range []int{1, 2, 3, 5, 6} {
		t.Run(strconv.Itoa(initial), func(t *testing.T) {
			obj, err := resolveFixture(t, f, IndirectRef{Number: 1}, Window{Initial: initial, Step: 4})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := Ensure[IndirectObject](obj); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestResolveIndirectFatal tests that malformed objects are not retried
func TestResolveIndirectFatal(t *testing.T) {
	f := pdftest.New().
		Object("1 0 obj\n<< /A 1 ]>>\nendobj").
		Object("2 0 obj\n<< /A (x) /B foo >>\nendobj").
		Build()

	tests := []struct {
		name string
		ref  IndirectRef
		want error
	}{
		{"unbalanced bracket", IndirectRef{Number: 1}, ErrUnexpectedToken},
		{"undefined keyword", IndirectRef{Number: 2}, ErrUndefinedKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)

			_, err := resolveFixture(t, f, tt.ref, DefaultWindow)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if errors.Is(err, ErrWindowExhausted) {
				t.Errorf("fatal error reported as exhausted window: %v", err)
			}
			if logs.Contains("growing resolve window") {
				t.Error("window grew for a fatal error")
			}
		})
	}
}

// TestResolveIndirectWindowExhausted tests an object that runs into EOF
func TestResolveIndirectWindowExhausted(t *testing.T) {
	f := pdftest.New().
		Object("1 0 obj\n(never closed").
		Build()

	_, err := resolveFixture(t, f, IndirectRef{Number: 1}, Window{Initial: 64, Step: 64})
	if !errors.Is(err, ErrWindowExhausted) {
		t.Fatalf("got %v, want ErrWindowExhausted", err)
	}
	if !errors.Is(err, ErrFinishInObject) {
		t.Errorf("expected the last parse error to be kept, got %v", err)
	}
}

// TestResolveIndirectLookupErrors tests failures before any parsing
func TestResolveIndirectLookupErrors(t *testing.T) {
	f := pdftest.New().
		Object("2 0 obj\n5\nendobj").
		Object("2 0 obj\n6\nendobj").
		Build()

	tests := []struct {
		name string
		ref  IndirectRef
		want error
	}{
		{"wrong generation", IndirectRef{Number: 1, Generation: 4}, ErrGenerationNumberMismatch},
		{"not in table", IndirectRef{Number: 9}, ErrNotContain},
		{"free entry", IndirectRef{Number: 0, Generation: 65535}, ErrNotSupportedEntryType},
		{"header does not match", IndirectRef{Number: 1}, ErrObjectNumberMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveFixture(t, f, tt.ref, DefaultWindow)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	obj, err := resolveFixture(t, f, IndirectRef{Number: 2}, DefaultWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := Ensure[Int](obj.(IndirectObject).Object); v.Value != 6 {
		t.Errorf("got %v, want 6", obj)
	}
}
