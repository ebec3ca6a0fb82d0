package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/cropenv/value"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// output holds the flags shared by commands that print documents.
type output struct {
	Format string `default:"json" enum:"json,yaml,cbor" help:"Output format (${enum})." short:"F"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`
}

// encode writes v to w in the selected format. Text formats end with a
// newline; CBOR is written as is.
func (o output) encode(ctx context.Context, w io.Writer, v value.Value) error {
	var (
		data []byte
		err  error
	)

	switch o.Format {
	case FormatJSON, "":
		data, err = encodeJSON(v, o.Indent)
	case FormatYAML:
		data, err = encodeYAML(ctx, v, o.Indent)
	case FormatCBOR:
		data, err = encodeCBOR(v)
	default:
		return ErrUnknownFormat.With(slog.String("format", o.Format))
	}

	if err != nil {
		return ErrEncode.Wrap(err).With(slog.String("format", o.Format))
	}

	if _, err := w.Write(data); err != nil {
		return ErrEncode.Wrap(err).With(slog.String("format", o.Format))
	}

	return nil
}

// encodeJSON writes compact JSON, or indented JSON when indent is
// positive. HTML characters are left unescaped.
func encodeJSON(v value.Value, indent int) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// encodeYAML writes block style, or flow style when indent is not
// positive.
func encodeYAML(ctx context.Context, v value.Value, indent int) ([]byte, error) {
	opts := []yaml.EncodeOption{yaml.UseLiteralStyleIfMultiline(true)}
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent), yaml.IndentSequence(true))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	return yaml.MarshalContext(ctx, v.Native(), opts...)
}

// cborMode encodes maps with sorted keys so equal documents produce equal
// bytes.
//
//nolint:gochecknoglobals
var cborMode, _ = cbor.CoreDetEncOptions().EncMode()

func encodeCBOR(v value.Value) ([]byte, error) {
	return cborMode.Marshal(v.Native())
}
