package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/cropenv/envdoc"
	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/resolve"
	"github.com/ardnew/cropenv/value"
)

// watchSettle is how long input files must stay quiet before the
// environment is composed again.
const watchSettle = 200 * time.Millisecond

// stdoutSink is the output file name selecting standard output.
const stdoutSink = "-"

// Env composes the environment document from crop, site and sim documents.
type Env struct {
	Encoding output `embed:""`

	Crop string `help:"Crop document."       required:"" type:"existingfile"`
	Site string `help:"Site document."       required:"" type:"existingfile"`
	Sim  string `help:"Simulation document." required:"" type:"existingfile"`

	Climate string `help:"Climate CSV embedded in place of the sim document's climate.csv path." type:"existingfile"`
	Catalog string `help:"Output catalog mapping output names to an id and unit."              type:"existingfile"`

	Output string `default:"-" help:"Output file or '-' for stdout."                 short:"o"`
	Watch  bool   `            help:"Compose again whenever an input file changes." short:"w"`
}

// Run executes the env command.
func (c *Env) Run(ctx context.Context) error {
	r := resolverFrom(ctx)

	if !c.Watch {
		return c.compose(ctx, r)
	}

	return c.watch(ctx, r)
}

// inputs lists the files the environment is built from.
func (c *Env) inputs() []string {
	files := []string{c.Crop, c.Site, c.Sim}

	for _, f := range []string{c.Climate, c.Catalog} {
		if f != "" {
			files = append(files, f)
		}
	}

	return files
}

func (c *Env) documents(ctx context.Context, r *resolve.Resolver) (envdoc.Documents, error) {
	var docs envdoc.Documents

	for _, in := range []struct {
		path string
		doc  *value.Value
	}{
		{c.Crop, &docs.Crop},
		{c.Site, &docs.Site},
		{c.Sim, &docs.Sim},
	} {
		v, err := r.Loader().Load(ctx, in.path)
		if err != nil {
			return envdoc.Documents{}, err
		}

		*in.doc = v
	}

	// Relative includes default to the sim document's directory. Crop and
	// site documents inherit it from the sim document.
	if docs.Sim.Kind() == value.KindObject && !docs.Sim.Has(resolve.BasePathKey) {
		if abs, err := filepath.Abs(filepath.Dir(c.Sim)); err == nil {
			docs.Sim = docs.Sim.Set(resolve.BasePathKey, value.Str(filepath.ToSlash(abs)))
		}
	}

	if c.Climate != "" {
		text, err := os.ReadFile(c.Climate)
		if err != nil {
			return envdoc.Documents{}, err
		}

		docs.Climate = string(text)
	}

	return docs, nil
}

// catalog reads the output catalog, an object mapping output names to
// {"id": integer, "unit": string}.
func (c *Env) catalog(ctx context.Context, r *resolve.Resolver) (envdoc.Catalog, error) {
	if c.Catalog == "" {
		return nil, nil
	}

	v, err := r.Loader().Load(ctx, c.Catalog)
	if err != nil {
		return nil, err
	}

	cat := envdoc.Catalog{}

	for name, entry := range v.Members() {
		var info envdoc.OutputInfo

		if id, ok := entry.Lookup("id"); ok {
			n, _ := id.AsInt()
			info.ID = int(n)
		}

		if unit, ok := entry.Lookup("unit"); ok {
			info.Unit, _ = unit.AsString()
		}

		cat[name] = info
	}

	return cat, nil
}

func (c *Env) compose(ctx context.Context, r *resolve.Resolver) error {
	stdout, stderr := writers(ctx)

	docs, err := c.documents(ctx, r)
	if err != nil {
		return err
	}

	cat, err := c.catalog(ctx, r)
	if err != nil {
		return err
	}

	env, err := envdoc.Compose(ctx, r, docs,
		envdoc.WithCatalog(cat),
		envdoc.WithLogger(log.Default()),
	)
	if err != nil {
		if errors.Is(err, envdoc.ErrResolveFailed) {
			writeReport(stderr, "environment", envdoc.Failures(err))
		}

		return err
	}

	if c.Output == stdoutSink {
		return c.Encoding.encode(ctx, stdout, env)
	}

	var buf bytes.Buffer
	if err := c.Encoding.encode(ctx, &buf, env); err != nil {
		return err
	}

	if err := os.WriteFile(c.Output, buf.Bytes(), 0o600); err != nil {
		return ErrEncode.Wrap(err).With(slog.String("file", c.Output))
	}

	log.DebugContext(ctx, "environment written",
		slog.String("file", c.Output),
		slog.Int("bytes", buf.Len()),
	)

	return nil
}

// watch composes once, then again each time an input file has changed and
// settled, until ctx is done. Composition errors are logged and do not stop
// the watch.
func (c *Env) watch(ctx context.Context, r *resolve.Resolver) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	targets := map[string]struct{}{}
	dirs := map[string]struct{}{}

	for _, f := range c.inputs() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("file", f))
		}

		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	// Watch directories rather than files so that editors replacing a file
	// by rename keep being observed.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("dir", dir))
		}
	}

	run := func() {
		if err := c.compose(ctx, r); err != nil {
			log.ErrorContext(ctx, "compose failed", slog.Any("error", err))
		}
	}

	run()

	ticker := time.NewTicker(watchSettle / 4)
	defer ticker.Stop()

	var changed time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if _, ok := targets[filepath.Clean(event.Name)]; !ok {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			log.DebugContext(ctx, "input changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			changed = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-ticker.C:
			if !changed.IsZero() && time.Since(changed) >= watchSettle {
				changed = time.Time{}

				run()
			}
		}
	}
}
