package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/pkg"
	"github.com/ardnew/cropenv/resolve"
	"github.com/ardnew/cropenv/value"
)

// configLoader returns a [kong.ConfigurationLoader] for config files written
// as JSON documents. The document is resolved like any other input, so
// macros such as include-from-file, ref and % may be used; relative
// includes are resolved against the configuration directory unless the
// document sets include-file-base-path.
//
// Top-level members map to flags by name. Flag names with hyphens (e.g.,
// "log-level") may be written with underscores (e.g., "log_level"):
//
//	{
//	  "log-level": "debug",
//	  "max_depth": 50,
//	  "strict-texture-classes": true
//	}
//
// Command-line flags override config file values. A config file that cannot
// be parsed is ignored.
func configLoader(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		res := resolve.New()

		doc, err := res.Loader().LoadReader(ctx, "config.json", r)
		if err != nil || doc.Kind() != value.KindObject {
			log.DebugContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		if !doc.Has(resolve.BasePathKey) {
			doc = doc.Set(resolve.BasePathKey, value.Str(filepath.ToSlash(pkg.ConfigDir())))
		}

		result := res.Resolve(ctx, doc)
		for _, err := range result.Errors {
			log.WarnContext(ctx, "configuration file", slog.Any("error", err))
		}

		return configFrom(result.Value), nil
	}
}

// config implements [kong.Resolver] for resolved configuration documents.
type config map[string]any

// configFrom flattens the top-level members of doc into flag values.
// Numbers become strings, which kong parses into the flag's type.
func configFrom(doc value.Value) config {
	c := config{}

	for key, v := range doc.Members() {
		if key == resolve.BasePathKey {
			continue
		}

		if n, ok := v.AsInt(); ok {
			c[key] = strconv.FormatInt(n, 10)
		} else if f, ok := v.AsNumber(); ok {
			c[key] = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			c[key] = v.Native()
		}
	}

	return c
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}
