package envdoc

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/cropenv/resolve"
	"github.com/ardnew/cropenv/value"
)

// Compose resolves the crop, site and sim documents concurrently, each
// against itself in its own pass, and assembles the results.
//
// The sim document's include-file-base-path is the default base path of the
// crop and site documents. If any document fails to resolve, Compose
// returns an error wrapping [ErrResolveFailed] that carries every distinct
// error (see [Failures]) and no document.
func Compose(ctx context.Context, r *resolve.Resolver, docs Documents, opts ...Option) (value.Value, error) {
	cfg := makeConfig(opts)

	if base, ok := docs.Sim.Get(resolve.BasePathKey); ok {
		docs.Crop = withDefault(docs.Crop, resolve.BasePathKey, base)
		docs.Site = withDefault(docs.Site, resolve.BasePathKey, base)
	}

	inputs := [...]struct {
		name string
		doc  *value.Value
	}{
		{"crop", &docs.Crop},
		{"site", &docs.Site},
		{"sim", &docs.Sim},
	}

	var results [len(inputs)]resolve.Result

	g, gctx := errgroup.WithContext(ctx)

	for i, in := range inputs {
		g.Go(func() error {
			results[i] = r.Resolve(gctx, *in.doc)

			cfg.logger.DebugContext(gctx, "document resolved",
				slog.String("document", in.name),
				slog.Int("errors", len(results[i].Errors)),
			)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return value.Value{}, err
	}

	var (
		errs []error
		seen = map[string]struct{}{}
	)

	for i, in := range inputs {
		for _, err := range results[i].Errors {
			if _, dup := seen[err.Error()]; dup {
				continue
			}

			seen[err.Error()] = struct{}{}
			errs = append(errs, err)
		}

		*in.doc = results[i].Value
	}

	if len(errs) > 0 {
		return value.Value{}, ErrResolveFailed.
			Wrap(errors.Join(errs...)).
			With(slog.Int("errors", len(errs)))
	}

	return Assemble(docs, opts...)
}

func withDefault(doc value.Value, key string, v value.Value) value.Value {
	if doc.Kind() != value.KindObject || doc.Has(key) {
		return doc
	}

	return doc.Set(key, v)
}
