package envdoc

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/cropenv/value"
)

// Op is an aggregation over time steps or soil layers.
type Op int

const (
	OpAvg Op = iota
	OpMedian
	OpSum
	OpMin
	OpMax
	OpFirst
	OpLast
	OpNone
	OpUndefined
)

var opNames = [...]string{"AVG", "MEDIAN", "SUM", "MIN", "MAX", "FIRST", "LAST", "NONE"}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}

	return "undef"
}

// ParseOp returns the aggregation named s, ignoring case.
func ParseOp(s string) (Op, bool) {
	for i, name := range opNames {
		if strings.EqualFold(s, name) {
			return Op(i), true
		}
	}

	return OpUndefined, false
}

// Organ is a plant organ an output refers to.
type Organ int

const (
	OrganRoot Organ = iota
	OrganLeaf
	OrganShoot
	OrganFruit
	OrganStruct
	OrganSugar
	OrganUndefined
)

var organNames = [...]string{"Root", "Leaf", "Shoot", "Fruit", "Struct", "Sugar"}

func (o Organ) String() string {
	if o >= 0 && int(o) < len(organNames) {
		return organNames[o]
	}

	return "undef"
}

// ParseOrgan returns the organ named s, ignoring case.
func ParseOrgan(s string) (Organ, bool) {
	for i, name := range organNames {
		if strings.EqualFold(s, name) {
			return Organ(i), true
		}
	}

	return OrganUndefined, false
}

// OutputInfo is the catalog entry of an output.
type OutputInfo struct {
	ID   int
	Unit string
}

// Catalog maps output names to engine ids and units.
type Catalog map[string]OutputInfo

// OutputID selects one output of the simulation engine. Layers are 0-based;
// -1 means no layer.
type OutputID struct {
	ID          int
	Name        string
	DisplayName string
	Unit        string
	JSONInput   string
	LayerAggOp  Op
	TimeAggOp   Op
	Organ       Organ
	FromLayer   int
	ToLayer     int
}

// Value returns the OId object of o.
func (o OutputID) Value() value.Value {
	return value.Object(map[string]value.Value{
		"type":        value.Str("OId"),
		"id":          value.Int(int64(o.ID)),
		"name":        value.Str(o.Name),
		"displayName": value.Str(o.DisplayName),
		"unit":        value.Str(o.Unit),
		"jsonInput":   value.Str(o.JSONInput),
		"layerAggOp":  value.Int(int64(o.LayerAggOp)),
		"timeAggOp":   value.Int(int64(o.TimeAggOp)),
		"organ":       value.Int(int64(o.Organ)),
		"fromLayer":   value.Int(int64(o.FromLayer)),
		"toLayer":     value.Int(int64(o.ToLayer)),
	})
}

// ParseOutputID parses one element of an output list. An element is a name,
// optionally followed by "|displayName", or an array
//
//	[name, layer | aggregation | organ | [from, to?, layerAgg?], timeAgg?]
//
// with 1-based layer numbers.
func ParseOutputID(elem value.Value) (OutputID, error) {
	o := OutputID{
		ID:         -1,
		JSONInput:  elem.String(),
		LayerAggOp: OpNone,
		TimeAggOp:  OpAvg,
		Organ:      OrganUndefined,
		FromLayer:  -1,
		ToLayer:    -1,
	}

	invalid := func(reason string) (OutputID, error) {
		return OutputID{}, ErrInvalidOutputID.
			Wrap(fmt.Errorf("%s: %s", elem, reason)).
			With(slog.String("output", elem.String()))
	}

	var parts []value.Value

	switch elem.Kind() {
	case value.KindString:
		parts = []value.Value{elem}
	case value.KindArray:
		parts = elem.Elements()
		if len(parts) == 0 || len(parts) > 3 {
			return invalid("expected 1 to 3 elements")
		}
	default:
		return invalid("expected string or array")
	}

	name, ok := parts[0].AsString()
	if !ok || name == "" {
		return invalid("expected output name")
	}

	o.Name, o.DisplayName, _ = strings.Cut(name, "|")

	if len(parts) > 1 {
		if err := o.parseSelector(parts[1]); err != "" {
			return invalid(err)
		}
	}

	if len(parts) > 2 {
		s, _ := parts[2].AsString()

		op, ok := ParseOp(s)
		if !ok {
			return invalid("unknown time aggregation " + parts[2].String())
		}

		o.TimeAggOp = op
	}

	return o, nil
}

// parseSelector applies the second element of an array output id. It
// returns a reason on failure.
func (o *OutputID) parseSelector(x value.Value) string {
	switch x.Kind() {
	case value.KindNumber:
		n, ok := x.AsInt()
		if !ok || n < 1 {
			return "layer must be a positive integer"
		}

		o.FromLayer, o.ToLayer = int(n-1), int(n-1)

	case value.KindString:
		s, _ := x.AsString()
		if organ, ok := ParseOrgan(s); ok {
			o.Organ = organ
		} else if op, ok := ParseOp(s); ok {
			o.TimeAggOp = op
		} else {
			return "unknown organ or aggregation " + x.String()
		}

	case value.KindArray:
		r := x.Elements()
		if len(r) == 0 || len(r) > 3 {
			return "layer range must have 1 to 3 elements"
		}

		from, ok := r[0].AsInt()
		if !ok || from < 1 {
			return "layer must be a positive integer"
		}

		to := from

		if len(r) > 1 {
			if to, ok = r[1].AsInt(); !ok || to < from {
				return "layer range end must be an integer not below its start"
			}
		}

		if len(r) > 2 {
			s, _ := r[2].AsString()

			op, ok := ParseOp(s)
			if !ok {
				return "unknown layer aggregation " + r[2].String()
			}

			o.LayerAggOp = op
		}

		o.FromLayer, o.ToLayer = int(from-1), int(to-1)

	default:
		return "unexpected selector " + x.String()
	}

	return ""
}

// ParseOutputIDs parses an output list into OId objects. With a catalog,
// ids and units are filled in and names missing from it are skipped. A
// null or absent list yields an empty array.
func ParseOutputIDs(list value.Value, catalog Catalog) (value.Value, error) {
	if list.IsNull() {
		return value.Array(), nil
	}

	if list.Kind() != value.KindArray {
		return value.Value{}, ErrInvalidOutputID.
			Wrap(fmt.Errorf("%s: expected array", list))
	}

	out := make([]value.Value, 0, list.Len())

	for _, elem := range list.All() {
		o, err := ParseOutputID(elem)
		if err != nil {
			return value.Value{}, err
		}

		if catalog != nil {
			info, ok := catalog[o.Name]
			if !ok {
				continue
			}

			o.ID, o.Unit = info.ID, info.Unit
		}

		out = append(out, o.Value())
	}

	return value.Array(out...), nil
}

// parseAtOutputIDs parses the date-keyed output lists of at. Keys that are
// not ISO dates are skipped.
func parseAtOutputIDs(at value.Value, catalog Catalog) (value.Value, bool, error) {
	if at.Kind() != value.KindObject {
		return value.Value{}, false, nil
	}

	out := map[string]value.Value{}

	for date, list := range at.Members() {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			continue
		}

		ids, err := ParseOutputIDs(list, catalog)
		if err != nil {
			return value.Value{}, false, err
		}

		out[date] = ids
	}

	return value.Object(out), true, nil
}
