package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/pkg"
	"github.com/ardnew/cropenv/value"
)

// Predefined errors (sentinel values).
var (
	ErrFileNotFound   = pkg.NewError("file not found")
	ErrReadInput      = pkg.NewError("failed to read input")
	ErrUnparsableJSON = pkg.NewError("unparsable document")
)

// Format selects the decoder for a document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf returns the format implied by the file name extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Loader decodes documents from files, readers and byte slices.
// A Loader is safe for concurrent use.
type Loader struct {
	readFile func(string) ([]byte, error)
	logger   log.Logger
	cache    *sync.Map // key: format and content hash; nil disables caching
}

// Option configures a [Loader].
type Option func(*Loader)

// WithReadFile replaces [os.ReadFile] as the source of file contents.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(l *Loader) {
		if fn != nil {
			l.readFile = fn
		}
	}
}

// WithLogger sets the logger for trace output.
func WithLogger(logger log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithCache enables or disables the decoded-document cache. It is enabled
// by default.
func WithCache(enable bool) Option {
	return func(l *Loader) {
		if enable {
			l.cache = &sync.Map{}
		} else {
			l.cache = nil
		}
	}
}

// New returns a Loader reading from the file system.
func New(opts ...Option) *Loader {
	l := &Loader{readFile: os.ReadFile, cache: &sync.Map{}}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads and decodes the file at path.
//
// A missing file yields [ErrFileNotFound], any other read failure
// [ErrReadInput], and content that does not decode to a non-null value
// [ErrUnparsableJSON].
func (l *Loader) Load(ctx context.Context, path string) (value.Value, error) {
	data, err := l.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return value.Value{}, ErrFileNotFound.Wrap(err).
				With(slog.String("path", path))
		}

		return value.Value{}, ErrReadInput.Wrap(err).
			With(slog.String("path", path))
	}

	l.logger.TraceContext(ctx, "read input",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	return l.decode(ctx, path, data)
}

// LoadReader reads r to EOF and decodes it. The name selects the format and
// appears in errors; use "-" for standard input.
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader) (value.Value, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return value.Value{}, ErrReadInput.Wrap(err).
			With(slog.String("path", name))
	}

	l.logger.TraceContext(ctx, "read input",
		slog.String("path", name),
		slog.Int("bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return l.decode(ctx, name, data)
}

// LoadBytes decodes data. The name selects the format and appears in errors.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (value.Value, error) {
	return l.decode(ctx, name, data)
}

func (l *Loader) decode(ctx context.Context, name string, data []byte) (value.Value, error) {
	format := FormatOf(name)

	var key string

	if l.cache != nil {
		key = strconv.Itoa(int(format)) + ":" + strconv.FormatUint(xxh3.Hash(data), 36)

		if cached, ok := l.cache.Load(key); ok {
			l.logger.TraceContext(ctx, "cache lookup",
				slog.String("path", name),
				slog.String("key", key),
				slog.Bool("hit", true),
			)

			return cached.(value.Value), nil
		}
	}

	v, err := parse(format, data)
	if err != nil {
		return value.Value{}, ErrUnparsableJSON.Wrap(err).
			With(slog.String("path", name))
	}

	if v.IsNull() {
		return value.Value{}, ErrUnparsableJSON.Wrap(errors.New("document is null")).
			With(slog.String("path", name))
	}

	if l.cache != nil {
		l.cache.Store(key, v)
	}

	return v, nil
}

func parse(format Format, data []byte) (value.Value, error) {
	if format == FormatJSON {
		return value.Parse(data)
	}

	var x any
	if err := yaml.Unmarshal(data, &x); err != nil {
		return value.Value{}, err
	}

	return value.FromNative(x)
}
