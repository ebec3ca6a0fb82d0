package resolve

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/cropenv/value"
)

// ParamKind constrains the value accepted for a macro parameter.
type ParamKind int

const (
	// Any accepts every value.
	Any ParamKind = iota
	// String accepts strings.
	String
	// Number accepts integral and non-integral numbers.
	Number
	// Integer accepts only numbers written without fraction or exponent.
	Integer
	// Boolean accepts true and false.
	Boolean
)

func (k ParamKind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	default:
		return "any"
	}
}

func (k ParamKind) accepts(v value.Value) bool {
	switch k {
	case String:
		return v.Kind() == value.KindString
	case Number:
		return v.Kind() == value.KindNumber
	case Integer:
		_, ok := v.AsInt()

		return ok
	case Boolean:
		return v.Kind() == value.KindBool
	default:
		return true
	}
}

// Param describes one macro parameter.
type Param struct {
	Name string
	Kind ParamKind
}

// Signature lists the parameters of a macro, excluding the leading name.
type Signature []Param

// Template renders the signature as an invocation template, such as
// `["ref", key1: string, key2: string]`.
func (s Signature) Template(name string) string {
	var sb strings.Builder

	sb.WriteString("[" + strconv.Quote(name))

	for _, p := range s {
		sb.WriteString(", " + p.Name + ": " + p.Kind.String())
	}

	sb.WriteString("]")

	return sb.String()
}

// Bind checks the resolved invocation inv against s. The error wraps
// [ErrMalformedMacroArguments] and names the offending invocation.
func (s Signature) Bind(inv value.Value) (Args, error) {
	elems := inv.Elements()
	if len(elems) == 0 {
		return Args{}, malformed(inv, "empty invocation")
	}

	name, _ := elems[0].AsString()
	args := elems[1:]

	if len(args) != len(s) {
		return Args{}, malformed(inv,
			fmt.Sprintf("expected %d arguments, got %d", len(s), len(args)))
	}

	for i, p := range s {
		if !p.Kind.accepts(args[i]) {
			got := args[i].Kind().String()
			if p.Kind == Integer && args[i].Kind() == value.KindNumber {
				got = "non-integral number"
			}

			return Args{}, malformed(inv,
				fmt.Sprintf("argument %d (%s): expected %s, got %s", i+1, p.Name, p.Kind, got))
		}
	}

	return Args{name: name, inv: inv, args: args}, nil
}

func malformed(inv value.Value, reason string) error {
	return ErrMalformedMacroArguments.
		Wrap(fmt.Errorf("%s: %s", inv, reason)).
		With(slog.String("invocation", inv.String()))
}

// Args are the validated arguments of one invocation. Accessors assume the
// kinds checked by [Signature.Bind].
type Args struct {
	name string
	inv  value.Value
	args []value.Value
}

// Name returns the macro name as written in the invocation, which may be an
// alias.
func (a Args) Name() string { return a.name }

// Invocation returns the whole resolved invocation, name included.
func (a Args) Invocation() value.Value { return a.inv }

// Len returns the number of arguments.
func (a Args) Len() int { return len(a.args) }

// Value returns argument i (0-based, excluding the name).
func (a Args) Value(i int) value.Value { return a.args[i] }

// Str returns argument i as a string.
func (a Args) Str(i int) string {
	s, _ := a.args[i].AsString()

	return s
}

// Number returns argument i as a float64.
func (a Args) Number(i int) float64 {
	f, _ := a.args[i].AsNumber()

	return f
}

// Int returns argument i as an int64.
func (a Args) Int(i int) int64 {
	n, _ := a.args[i].AsInt()

	return n
}
