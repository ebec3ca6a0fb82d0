package resolve

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Handler evaluates a macro on validated arguments. A handler reports
// failure by returning a Result with errors, conventionally built with
// [Pass.Fail]; it never panics on bad input.
type Handler func(p *Pass, args Args) Result

// Macro is a named handler with its argument descriptor.
type Macro struct {
	// Name is the canonical macro name.
	Name string
	// Aliases are alternative names dispatching to the same handler.
	Aliases []string
	// Params describes the arguments following the name.
	Params Signature
	// Doc is a one-line description.
	Doc string
	// Eval computes the macro.
	Eval Handler
}

// Template renders the invocation form of m.
func (m Macro) Template() string { return m.Params.Template(m.Name) }

// Table maps macro names (and aliases) to macros. A Table is immutable; use
// [Table.With] to derive an extended table.
type Table struct {
	byName map[string]Macro
}

// NewTable returns a table holding macros. A later macro replaces an
// earlier one registered under the same name or alias.
func NewTable(macros ...Macro) *Table {
	return (&Table{}).With(macros...)
}

// With returns a new table holding the receiver's macros plus macros.
func (t *Table) With(macros ...Macro) *Table {
	next := &Table{byName: map[string]Macro{}}
	if t != nil {
		maps.Copy(next.byName, t.byName)
	}

	for _, m := range macros {
		if m.Name == "" || m.Eval == nil {
			continue
		}

		// Drop every name of a macro being replaced so that none of its
		// aliases dangle.
		for _, name := range append([]string{m.Name}, m.Aliases...) {
			if old, ok := next.byName[name]; ok {
				for _, n := range append([]string{old.Name}, old.Aliases...) {
					delete(next.byName, n)
				}
			}
		}

		for _, name := range append([]string{m.Name}, m.Aliases...) {
			next.byName[name] = m
		}
	}

	return next
}

// Lookup returns the macro registered under name.
func (t *Table) Lookup(name string) (Macro, bool) {
	if t == nil {
		return Macro{}, false
	}

	m, ok := t.byName[name]

	return m, ok
}

// Names returns every registered name and alias in ascending order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(t.byName))
}

// Macros returns each distinct macro once, ordered by canonical name.
func (t *Table) Macros() []Macro {
	if t == nil {
		return nil
	}

	seen := map[string]Macro{}
	for _, m := range t.byName {
		seen[m.Name] = m
	}

	return slices.SortedFunc(maps.Values(seen), func(a, b Macro) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// DefaultTable returns the table of built-in macros.
//
//nolint:gochecknoglobals
var DefaultTable = sync.OnceValue(func() *Table { return NewTable(builtins()...) })
