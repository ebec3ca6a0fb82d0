package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/resolve"
	"github.com/ardnew/cropenv/value"
)

// Resolve expands the macros of one document against itself and prints the
// result.
type Resolve struct {
	Encoding output `embed:""`

	BasePath string `help:"Directory that relative include paths are resolved against." placeholder:"DIR" type:"path"`
	Partial  bool   `help:"Print the partially resolved document when errors occur."`

	Source string `arg:"" default:"-" help:"Source document file or '-' for stdin." name:"source"`
}

// Run executes the resolve command.
func (c *Resolve) Run(ctx context.Context) error {
	stdout, stderr := writers(ctx)
	r := resolverFrom(ctx)

	doc, err := readDocument(ctx, r, c.Source)
	if err != nil {
		return err
	}

	if c.BasePath != "" && doc.Kind() == value.KindObject {
		doc = doc.Set(resolve.BasePathKey, value.Str(filepath.ToSlash(c.BasePath)))
	}

	log.DebugContext(ctx, "resolving document", slog.String("source", c.Source))

	res := r.Resolve(ctx, doc)

	log.DebugContext(ctx, "document resolved",
		slog.String("source", c.Source),
		slog.Int("errors", len(res.Errors)),
	)

	if !res.Success() {
		writeReport(stderr, c.Source, res.Errors)

		if c.Partial {
			if err := c.Encoding.encode(ctx, stdout, res.Value); err != nil {
				return err
			}
		}

		return ErrResolve.With(
			slog.String("source", c.Source),
			slog.Int("errors", len(res.Errors)),
		)
	}

	return c.Encoding.encode(ctx, stdout, res.Value)
}

// readDocument loads the document at path, or standard input for "-".
func readDocument(ctx context.Context, r *resolve.Resolver, path string) (value.Value, error) {
	if path == stdinSource {
		return r.Loader().LoadReader(ctx, stdinSource, os.Stdin)
	}

	return r.Loader().Load(ctx, path)
}
