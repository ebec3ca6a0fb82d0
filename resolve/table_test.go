package resolve

import (
	"slices"
	"testing"

	"github.com/ardnew/cropenv/value"
)

func constant(v value.Value) Handler {
	return func(*Pass, Args) Result { return Succeed(v) }
}

func TestTableWith(t *testing.T) {
	base := NewTable(
		Macro{Name: "one", Aliases: []string{"uno"}, Eval: constant(value.Int(1))},
		Macro{Name: "skip"},
	)

	if _, ok := base.Lookup("skip"); ok {
		t.Error("macro without handler was registered")
	}

	next := base.With(Macro{Name: "one", Eval: constant(value.Int(11))})

	if _, ok := next.Lookup("uno"); ok {
		t.Error("alias of a replaced macro still resolves")
	}

	if _, ok := base.Lookup("uno"); !ok {
		t.Error("With modified its receiver")
	}

	res := New(WithTable(next)).Resolve(t.Context(), value.MustParse(`["one"]`))
	if !res.Value.Equal(value.Int(11)) {
		t.Errorf(`["one"] = %s, want 11`, res.Value)
	}
}

func TestTableNames(t *testing.T) {
	tbl := NewTable(
		Macro{Name: "b", Aliases: []string{"a2"}, Eval: constant(value.Null())},
		Macro{Name: "a", Eval: constant(value.Null())},
	)

	if got, want := tbl.Names(), []string{"a", "a2", "b"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	var names []string
	for _, m := range tbl.Macros() {
		names = append(names, m.Name)
	}

	if want := []string{"a", "b"}; !slices.Equal(names, want) {
		t.Errorf("Macros() = %v, want %v", names, want)
	}

	var nilTable *Table
	if nilTable.Names() != nil || nilTable.Macros() != nil {
		t.Error("nil table is not empty")
	}
}

func TestDefaultTable(t *testing.T) {
	for _, name := range []string{
		"ref", "include-from-file", "%",
		"humus-class->corg", "humus_st2corg",
		"bulk-density-class->raw-density", "ld_eff2trd",
		"KA5-texture-class->clay", "KA5TextureClass2clay",
		"KA5-texture-class->sand", "KA5TextureClass2sand",
		"sand-and-clay->lambda", "sandAndClay2lambda",
		"sand-and-clay->KA5-texture-class", "expr", "soil-profile-from-db",
	} {
		if _, ok := DefaultTable().Lookup(name); !ok {
			t.Errorf("%q is not registered", name)
		}
	}
}

func TestTemplate(t *testing.T) {
	m, _ := DefaultTable().Lookup("ref")

	if got, want := m.Template(), `["ref", key1: string, key2: string]`; got != want {
		t.Errorf("Template() = %s, want %s", got, want)
	}

	m, _ = DefaultTable().Lookup("ld_eff2trd")

	if got, want := m.Template(), `["bulk-density-class->raw-density", class: integer, clay: number]`; got != want {
		t.Errorf("Template() = %s, want %s", got, want)
	}
}

func TestArgsName(t *testing.T) {
	var seen string

	tbl := NewTable(Macro{
		Name:    "name",
		Aliases: []string{"alias"},
		Params:  Signature{{"x", Any}},
		Eval: func(_ *Pass, args Args) Result {
			seen = args.Name()

			return Succeed(args.Value(0))
		},
	})

	res := New(WithTable(tbl)).Resolve(t.Context(), value.MustParse(`["alias", {"k": true}]`))
	if !res.Success() || seen != "alias" {
		t.Errorf("Name() = %q, errors %v", seen, res.Messages())
	}

	if !res.Value.Equal(value.MustParse(`{"k": true}`)) {
		t.Errorf("value = %s", res.Value)
	}
}
