package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/cropenv/pkg"
)

// ErrUnsupportedType is returned by [FromNative] for Go values with no JSON
// counterpart.
var ErrUnsupportedType = pkg.NewError("unsupported native type")

// Native converts v to plain Go data: nil, bool, int64 (integral numbers
// that fit), float64, string, []any and map[string]any.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		if i, ok := v.AsInt(); ok {
			return i
		}

		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}

		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, m := range v.obj {
			out[k] = m.Native()
		}

		return out
	default:
		return nil
	}
}

// FromNative converts decoded Go data into a Value. It accepts the types
// produced by encoding/json (with or without UseNumber), YAML decoders and
// expression evaluators: nil, bool, all integer and float kinds,
// [json.Number], string, [time.Time], slices and maps with string (or
// stringable) keys, and Value itself.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		return fromNumber(t.String())
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Value{kind: KindNumber, num: float64(t), integral: true}, nil
	case time.Time:
		return Str(formatTime(t)), nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}

			out[i] = ev
		}

		return Value{kind: KindArray, arr: out}, nil
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}

			out[k] = ev
		}

		return Value{kind: KindObject, obj: out}, nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Value{kind: KindNumber, num: float64(rv.Uint()), integral: true}, nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float())
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}

		return FromNative(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := range out {
			ev, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}

			out[i] = ev
		}

		return Value{kind: KindArray, arr: out}, nil
	case reflect.Map:
		out := make(map[string]Value, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			ev, err := FromNative(it.Value().Interface())
			if err != nil {
				return Value{}, err
			}

			out[fmt.Sprint(it.Key().Interface())] = ev
		}

		return Value{kind: KindObject, obj: out}, nil
	default:
		return Value{}, ErrUnsupportedType.Wrap(fmt.Errorf("%T", rv.Interface()))
	}
}

func fromNumber(lit string) (Value, error) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Value{}, err
	}

	return Value{
		kind:     KindNumber,
		num:      f,
		integral: !strings.ContainsAny(lit, ".eE"),
	}, nil
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, ErrUnsupportedType.Wrap(fmt.Errorf("non-finite number %v", f))
	}

	return Num(f), nil
}

// formatTime renders midnight UTC timestamps as plain dates, the form YAML
// decoders produce for unquoted "2006-01-02" scalars.
func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 &&
		t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}

	return t.Format(time.RFC3339Nano)
}
