package value

import (
	"iter"
	"maps"
	"math"
	"slices"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	arr      []Value
	obj      map[string]Value
	str      string
	num      float64
	kind     Kind
	boolean  bool
	integral bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Int returns an integral number.
func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i), integral: true} }

// Num returns a non-integral number, even if f has no fractional part.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Array returns an array holding a copy of elems.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(elems)}
}

// Object returns an object holding a copy of members.
func Object(members map[string]Value) Value {
	m := maps.Clone(members)
	if m == nil {
		m = map[string]Value{}
	}

	return Value{kind: KindObject, obj: m}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsIntegral reports whether v is a number written without a fraction or
// exponent.
func (v Value) IsIntegral() bool { return v.kind == KindNumber && v.integral }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == KindBool }

// AsNumber returns the number held by v, integral or not.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsInt returns the number held by v if it is integral and fits an int64.
func (v Value) AsInt() (int64, bool) {
	if !v.IsIntegral() || v.num < math.MinInt64 || v.num >= math.MaxInt64 {
		return 0, false
	}

	return int64(v.num), true
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// Len returns the number of array elements or object members, and zero for
// every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i'th array element, or null if v is not an array or i
// is out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}

	return v.arr[i]
}

// Elements returns a copy of the array elements of v.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}

	return slices.Clone(v.arr)
}

// All iterates over the array elements of v in order.
func (v Value) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.kind != KindArray {
			return
		}

		for i, e := range v.arr {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Get returns the member of object v named key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}

	m, ok := v.obj[key]

	return m, ok
}

// Lookup follows path through nested objects.
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v

	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}

		cur = next
	}

	return cur, true
}

// Has reports whether object v has a member named key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)

	return ok
}

// Keys returns the member names of object v in ascending order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}

	return slices.Sorted(maps.Keys(v.obj))
}

// Members iterates over the members of object v in ascending key order.
func (v Value) Members() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range v.Keys() {
			if !yield(k, v.obj[k]) {
				return
			}
		}
	}
}

// Set returns a copy of object v with member key set to m. If v is not an
// object, the result is a new object with the single member.
func (v Value) Set(key string, m Value) Value {
	obj := map[string]Value{}
	if v.kind == KindObject {
		obj = maps.Clone(v.obj)
	}

	obj[key] = m

	return Value{kind: KindObject, obj: obj}
}

// Equal reports whether v and w are deeply equal. Numbers compare by value,
// so 2 and 2.0 are equal.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolean == w.boolean
	case KindNumber:
		return v.num == w.num
	case KindString:
		return v.str == w.str
	case KindArray:
		return slices.EqualFunc(v.arr, w.arr, Value.Equal)
	case KindObject:
		return maps.EqualFunc(v.obj, w.obj, Value.Equal)
	default:
		return false
	}
}
