package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/cropenv/loader"
	"github.com/ardnew/cropenv/value"
)

func resolveString(t *testing.T, r *Resolver, doc string) Result {
	t.Helper()

	return r.Resolve(context.Background(), value.MustParse(doc))
}

func TestIdentity(t *testing.T) {
	docs := []string{
		`null`,
		`true`,
		`12.5`,
		`"ref"`,
		`[]`,
		`[1, "two", [3], {"four": null}]`,
		`{"a": {"b": ["x", "y"]}, "c": [["nested", 1]], "d": ""}`,
		`[1, "ref", "a", "b"]`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			in := value.MustParse(doc)
			res := New().Resolve(context.Background(), in)

			if !res.Success() {
				t.Fatalf("unexpected errors: %v", res.Messages())
			}

			if !res.Value.Equal(in) {
				t.Errorf("Resolve(%s) = %s", in, res.Value)
			}
		})
	}
}

func TestUnknownNameIsPlainData(t *testing.T) {
	res := resolveString(t, New(), `["not-a-macro", ["%", 50], {"k": ["%", 10]}]`)
	if !res.Success() {
		t.Fatalf("unexpected errors: %v", res.Messages())
	}

	want := value.MustParse(`["not-a-macro", 0.5, {"k": 0.1}]`)
	if !res.Value.Equal(want) {
		t.Errorf("got %s, want %s", res.Value, want)
	}
}

func TestBuiltinValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want float64
	}{
		{"percent float", `["%", 50.0]`, 0.5},
		{"percent int", `["%", 50]`, 0.5},
		{"bulk density", `["bulk-density-class->raw-density", 2, 0.3]`, 1230.0},
		{"bulk density alias", `["ld_eff2trd", 2, 0.3]`, 1230.0},
		{"ka5 clay", `["KA5-texture-class->clay", "Ss"]`, 0.02},
		{"ka5 sand", `["KA5-texture-class->sand", "Ss"]`, 0.93},
		{"ka5 sand alias", `["KA5TextureClass2sand", "Ss"]`, 0.93},
		{"ka5 lenient default clay", `["KA5-texture-class->clay", "Zz"]`, 0.0},
		{"ka5 lenient default sand", `["KA5-texture-class->sand", "Zz"]`, 0.66},
		{"humus", `["humus-class->corg", 5]`, 5.75},
		{"humus unmapped", `["humus_st2corg", 9]`, 0},
		{"lambda", `["sand-and-clay->lambda", 0.93, 0.02]`, 1.014135},
		{"nested args", `["%", ["%", 5000]]`, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveString(t, New(), tt.doc)
			if !res.Success() {
				t.Fatalf("unexpected errors: %v", res.Messages())
			}

			got, ok := res.Value.AsNumber()
			if !ok || !near(got, tt.want) {
				t.Errorf("got %s, want %v", res.Value, tt.want)
			}
		})
	}
}

func near(a, b float64) bool {
	d := a - b

	return d < 1e-9 && d > -1e-9
}

func TestExactConversions(t *testing.T) {
	tests := []struct {
		doc  string
		want value.Value
	}{
		{`["%", 50.0]`, value.Num(0.5)},
		{`["bulk-density-class->raw-density", 2, 0.3]`, value.Num(1230.0)},
		{`["KA5-texture-class->clay", "Ss"]`, value.Num(0.02)},
		{`["KA5-texture-class->sand", "Ss"]`, value.Num(0.93)},
		{`["sand-and-clay->KA5-texture-class", 0.93, 0.02]`, value.Str("Ss")},
	}

	for _, tt := range tests {
		res := resolveString(t, New(), tt.doc)
		if !res.Success() || !res.Value.Equal(tt.want) {
			t.Errorf("%s = %s %v, want %s", tt.doc, res.Value, res.Messages(), tt.want)
		}
	}
}

func TestMalformedArguments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"percent string", `["%", "50"]`},
		{"percent arity", `["%", 1, 2]`},
		{"percent no args", `["%"]`},
		{"ref arity", `["ref", "a"]`},
		{"ref type", `["ref", "a", 1]`},
		{"humus non-integral", `["humus-class->corg", 2.5]`},
		{"bulk density clay string", `["bulk-density-class->raw-density", 2, "0.3"]`},
		{"include number", `["include-from-file", 7]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := value.MustParse(tt.doc)
			res := New().Resolve(context.Background(), in)

			if res.Success() {
				t.Fatalf("Resolve(%s) succeeded with %s", in, res.Value)
			}

			if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrMalformedMacroArguments) {
				t.Fatalf("errors = %v, want one ErrMalformedMacroArguments", res.Messages())
			}

			if !strings.Contains(res.Errors[0].Error(), in.String()) {
				t.Errorf("error %q does not embed the invocation %s", res.Errors[0], in)
			}

			if !res.Value.Equal(in) {
				t.Errorf("placeholder = %s, want the invocation %s", res.Value, in)
			}
		})
	}
}

func TestLenientAggregation(t *testing.T) {
	res := resolveString(t, New(), `{
		"a": ["%", 50],
		"b": ["%", "bad"],
		"c": ["KA5-texture-class->clay", "Ss"]
	}`)

	if res.Success() {
		t.Fatal("expected failure")
	}

	if len(res.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(res.Errors), res.Messages())
	}

	for key, want := range map[string]value.Value{
		"a": value.Num(0.5),
		"b": value.MustParse(`["%", "bad"]`),
		"c": value.Num(0.02),
	} {
		if got, _ := res.Value.Get(key); !got.Equal(want) {
			t.Errorf("%s = %s, want %s", key, got, want)
		}
	}
}

func TestErrorOrderIsDepthFirst(t *testing.T) {
	res := resolveString(t, New(), `{
		"z": ["%", "third"],
		"a": [["%", "first"], {"m": ["ref", "no", "such"]}]
	}`)

	want := []error{ErrMalformedMacroArguments, ErrUnresolvedReference, ErrMalformedMacroArguments}
	if len(res.Errors) != len(want) {
		t.Fatalf("errors = %v", res.Messages())
	}

	for i, w := range want {
		if !errors.Is(res.Errors[i], w) {
			t.Errorf("error %d = %v, want %v", i, res.Errors[i], w)
		}
	}

	if !strings.Contains(res.Errors[0].Error(), "first") || !strings.Contains(res.Errors[2].Error(), "third") {
		t.Errorf("errors out of order: %v", res.Messages())
	}
}

func TestArgumentErrorsPropagateThroughHandler(t *testing.T) {
	res := resolveString(t, New(), `["sand-and-clay->lambda", ["%", "x"], 0.1]`)

	if res.Success() || len(res.Errors) != 2 {
		t.Fatalf("errors = %v, want argument and handler errors", res.Messages())
	}

	for _, err := range res.Errors {
		if !errors.Is(err, ErrMalformedMacroArguments) {
			t.Errorf("unexpected error %v", err)
		}
	}
}

func TestRef(t *testing.T) {
	res := resolveString(t, New(), `{
		"soil": {"clay": ["%", 30], "class": 2},
		"site": {"raw": ["bulk-density-class->raw-density", ["ref", "soil", "class"], ["ref", "soil", "clay"]]},
		"copy": ["ref", "site", "raw"],
		"missing": ["ref", "soil", "sand"]
	}`)

	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrUnresolvedReference) {
		t.Fatalf("errors = %v, want one ErrUnresolvedReference", res.Messages())
	}

	raw, _ := res.Value.Lookup("site", "raw")
	if f, _ := raw.AsNumber(); !near(f, 1230) {
		t.Errorf("site.raw = %s", raw)
	}

	if c, _ := res.Value.Get("copy"); !c.Equal(raw) {
		t.Errorf("copy = %s, want %s", c, raw)
	}

	if m, _ := res.Value.Get("missing"); !m.Equal(value.MustParse(`["ref", "soil", "sand"]`)) {
		t.Errorf("missing placeholder = %s", m)
	}
}

func TestCycleDetected(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"self", `{"a": {"b": ["ref", "a", "b"]}}`},
		{"mutual", `{"a": {"b": ["ref", "c", "d"]}, "c": {"d": ["ref", "a", "b"]}}`},
		{"through structure", `{"a": {"b": {"list": [1, ["ref", "a", "b"]]}}}`},
	}

	for _, tt := range tests {
		for _, cache := range []bool{true, false} {
			t.Run(tt.name, func(t *testing.T) {
				res := resolveString(t, New(WithCacheRefs(cache)), tt.doc)

				if res.Success() {
					t.Fatalf("resolved a cyclic document to %s", res.Value)
				}

				for _, err := range res.Errors {
					if !errors.Is(err, ErrCycleDetected) {
						t.Errorf("unexpected error %v", err)
					}
				}
			})
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func countingLoader(reads map[string]int) *loader.Loader {
	return loader.New(loader.WithReadFile(func(path string) ([]byte, error) {
		reads[filepath.Base(path)]++

		return os.ReadFile(path)
	}))
}

func TestRefCacheReadsIncludeOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "soil.json", `{"clay": ["%", 30]}`)

	root := value.MustParse(`{
		"include-file-base-path": "` + filepath.ToSlash(dir) + `",
		"shared": {"soil": ["include-from-file", "soil.json"]}
	}`)
	node := value.MustParse(`[["ref", "shared", "soil"], ["ref", "shared", "soil"]]`)

	tests := []struct {
		cache bool
		reads int
	}{
		{true, 1},
		{false, 2},
	}

	for _, tt := range tests {
		reads := map[string]int{}
		r := New(WithCacheRefs(tt.cache), WithLoader(countingLoader(reads)))

		res := r.ResolveNode(context.Background(), root, node)
		if !res.Success() {
			t.Fatalf("unexpected errors: %v", res.Messages())
		}

		if !res.Value.Index(0).Equal(res.Value.Index(1)) {
			t.Errorf("references differ: %s", res.Value)
		}

		if reads["soil.json"] != tt.reads {
			t.Errorf("cache=%v: %d reads, want %d", tt.cache, reads["soil.json"], tt.reads)
		}

		clay, _ := res.Value.Index(0).Get("clay")
		if f, _ := clay.AsNumber(); !near(f, 0.3) {
			t.Errorf("clay = %s", clay)
		}
	}
}

func TestCacheIsPerPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.json", `[1]`)

	reads := map[string]int{}
	r := New(WithLoader(countingLoader(reads)))
	doc := value.MustParse(`{"include-file-base-path": "` + filepath.ToSlash(dir) + `",
		"a": {"b": ["include-from-file", "x.json"]}, "c": ["ref", "a", "b"]}`)

	for range 2 {
		if res := r.Resolve(context.Background(), doc); !res.Success() {
			t.Fatalf("unexpected errors: %v", res.Messages())
		}
	}

	// Each pass reads once for "a.b" and once for the reference "c".
	if reads["x.json"] != 4 {
		t.Errorf("%d reads over two passes, want 4", reads["x.json"])
	}
}

func TestRefCacheIgnoresDepthFailures(t *testing.T) {
	doc := `{
		"k": {"v": ["%", ["%", 1.0]]},
		"x": {
			"deep":    ["%", ["%", ["ref", "k", "v"]]],
			"shallow": ["ref", "k", "v"]
		}
	}`

	uncached := resolveString(t, New(WithMaxDepth(3), WithCacheRefs(false)), doc)
	cached := resolveString(t, New(WithMaxDepth(3), WithCacheRefs(true)), doc)

	if !cached.Value.Equal(uncached.Value) {
		t.Errorf("cached value = %s, uncached = %s", cached.Value, uncached.Value)
	}

	if got, want := cached.Messages(), uncached.Messages(); !slices.Equal(got, want) {
		t.Errorf("cached errors = %q, uncached = %q", got, want)
	}

	got, _ := cached.Value.Lookup("x", "shallow")
	if n, ok := got.AsNumber(); !ok || !near(n, 0.0001) {
		t.Errorf("x.shallow = %s, want 0.0001", got)
	}
}

func TestFailureMessageShowsInvocation(t *testing.T) {
	res := resolveString(t, New(), `{"corg": ["humus-class->corg", 2.0]}`)
	if res.Success() {
		t.Fatal("fractional class accepted")
	}

	if msg := res.Messages()[0]; !strings.Contains(msg, `["humus-class->corg",2.0]`) {
		t.Errorf("message %q does not show the invocation as written", msg)
	}

	// The placeholder left in the output fails again when resolved.
	again := New().Resolve(context.Background(), value.MustParse(res.Value.String()))
	if again.Success() {
		t.Errorf("placeholder %s resolves", res.Value)
	}
}
