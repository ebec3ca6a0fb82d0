package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/cropenv/pkg"
)

// ErrSyntax is returned by [Parse] for malformed JSON text.
var ErrSyntax = pkg.NewError("invalid JSON")

// Parse decodes a single JSON value from data. Trailing non-space input is
// an error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var x any
	if err := dec.Decode(&x); err != nil {
		return Value{}, ErrSyntax.Wrap(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrSyntax.Wrap(errors.New("unexpected data after top-level value"))
	}

	return FromNative(x)
}

// MustParse is like [Parse] but panics on error. It is intended for tests
// and literals.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}

	return v
}

// MarshalJSON implements [json.Marshaler]. Object members are written in
// ascending key order. Characters significant to HTML are not escaped, and
// a non-integral number with a whole value keeps a fraction ("2.0"), so
// the output parses back to an equal Value.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v.jsonNative()); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// jsonNative is [Value.Native] with numbers rendered as [json.Number].
func (v Value) jsonNative() any {
	switch v.kind {
	case KindNumber:
		return json.Number(v.numberLiteral())
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.jsonNative()
		}

		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, m := range v.obj {
			out[k] = m.jsonNative()
		}

		return out
	default:
		return v.Native()
	}
}

// numberLiteral formats a number the way encoding/json formats floats,
// except that whole non-integral numbers end in ".0".
func (v Value) numberLiteral() string {
	if i, ok := v.AsInt(); ok {
		return strconv.FormatInt(i, 10)
	}

	if abs := math.Abs(v.num); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(v.num, 'e', -1, 64)
	}

	lit := strconv.FormatFloat(v.num, 'f', -1, 64)
	if !strings.Contains(lit, ".") {
		lit += ".0"
	}

	return lit
}

// UnmarshalJSON implements [json.Unmarshaler].
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}

	return string(b)
}
