package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/cropenv/loader"
	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/value"
)

// DefaultMaxDepth bounds the nesting of macro expansions.
const DefaultMaxDepth = 100

// BasePathKey is the root member holding the directory that relative
// include paths are resolved against.
const BasePathKey = "include-file-base-path"

// Resolver expands macro invocations. Build one with [New]; the zero value
// is not usable.
type Resolver struct {
	table     *Table
	loader    *loader.Loader
	logger    log.Logger
	maxDepth  int
	cacheRefs bool
	strict    bool
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithTable sets the macro table. The default is [DefaultTable].
func WithTable(t *Table) Option {
	return func(r *Resolver) {
		if t != nil {
			r.table = t
		}
	}
}

// WithLoader sets the loader used by include-from-file.
func WithLoader(l *loader.Loader) Option {
	return func(r *Resolver) {
		if l != nil {
			r.loader = l
		}
	}
}

// WithLogger sets the logger for trace output.
func WithLogger(logger log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMaxDepth bounds the nesting of macro expansions. Non-positive values
// select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}

		r.maxDepth = depth
	}
}

// WithCacheRefs controls whether a reference resolved once in a pass is
// reused for later references to the same key path. Enabled by default.
func WithCacheRefs(enable bool) Option {
	return func(r *Resolver) { r.cacheRefs = enable }
}

// WithStrictTextureClasses makes unknown KA5 texture codes an error
// ([ErrUnknownTextureClass]) instead of yielding [soil.DefaultTexture].
func WithStrictTextureClasses(enable bool) Option {
	return func(r *Resolver) { r.strict = enable }
}

// New returns a Resolver configured by opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		table:     DefaultTable(),
		maxDepth:  DefaultMaxDepth,
		cacheRefs: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.loader == nil {
		r.loader = loader.New(loader.WithLogger(r.logger))
	}

	return r
}

// Table returns the resolver's macro table.
func (r *Resolver) Table() *Table { return r.table }

// Loader returns the resolver's document loader.
func (r *Resolver) Loader() *loader.Loader { return r.loader }

// Resolve resolves root against itself.
func (r *Resolver) Resolve(ctx context.Context, root value.Value) Result {
	return r.ResolveNode(ctx, root, root)
}

// ResolveNode resolves node against root in a new [Pass].
func (r *Resolver) ResolveNode(ctx context.Context, root, node value.Value) Result {
	p := &Pass{
		ctx:    ctx,
		r:      r,
		root:   root,
		cache:  map[string]Result{},
		active: map[string]struct{}{},
	}

	return p.resolve(node)
}

// Pass is the state of one top-level resolution: the root document, the
// reference cache and the references currently being resolved. Handlers
// receive the Pass of the resolution invoking them.
type Pass struct {
	ctx    context.Context
	r      *Resolver
	root   value.Value
	cache  map[string]Result
	active map[string]struct{}
	depth  int
}

// Context returns the context of the resolution.
func (p *Pass) Context() context.Context { return p.ctx }

// Root returns the document being resolved.
func (p *Pass) Root() value.Value { return p.root }

// Loader returns the document loader.
func (p *Pass) Loader() *loader.Loader { return p.r.loader }

// Logger returns the resolver's logger.
func (p *Pass) Logger() log.Logger { return p.r.logger }

// Strict reports whether unknown lookup keys are errors.
func (p *Pass) Strict() bool { return p.r.strict }

// Resolve resolves node against the pass root.
func (p *Pass) Resolve(node value.Value) Result { return p.resolve(node) }

// Fail returns a failed Result whose value is the invocation being
// evaluated.
func (p *Pass) Fail(args Args, errs ...error) Result {
	return Failed(args.Invocation(), errs...)
}

// Ref resolves the member of the root found by following path.
//
// While the member is being resolved, a second reference to the same path
// fails with [ErrCycleDetected]. With reference caching enabled, the first
// result for a path is reused by later references in the same pass, except
// results affected by a cycle, the depth bound or cancellation, which
// depend on where the reference was reached.
func (p *Pass) Ref(args Args, path ...string) Result {
	key := strings.Join(path, "\x00")
	attr := slog.String("ref", strings.Join(path, "."))

	if cached, ok := p.cache[key]; ok {
		p.Logger().TraceContext(p.ctx, "ref cache hit", attr)

		return cached
	}

	if _, ok := p.active[key]; ok {
		p.Logger().TraceContext(p.ctx, "cycle detected", attr)

		return p.Fail(args, ErrCycleDetected.Wrap(errorf(args.Invocation())).With(attr))
	}

	node, ok := p.root.Lookup(path...)
	if !ok {
		return p.Fail(args, ErrUnresolvedReference.Wrap(errorf(args.Invocation())).With(attr))
	}

	p.active[key] = struct{}{}
	res := p.resolve(node)
	delete(p.active, key)

	if p.r.cacheRefs && !contextual(res) {
		p.cache[key] = res
	}

	return res
}

func (p *Pass) resolve(node value.Value) Result {
	switch node.Kind() {
	case value.KindArray:
		if name, ok := node.Index(0).AsString(); ok {
			if m, ok := p.r.table.Lookup(name); ok {
				return p.expand(m, node)
			}
		}

		return p.resolveArray(node)

	case value.KindObject:
		members := make(map[string]value.Value, node.Len())

		var errs []error

		for k, v := range node.Members() {
			res := p.resolve(v)
			members[k] = res.Value
			errs = union(errs, res.Errors...)
		}

		return Result{Value: value.Object(members), Errors: errs}

	default:
		return Succeed(node)
	}
}

func (p *Pass) resolveArray(node value.Value) Result {
	elems := make([]value.Value, 0, node.Len())

	var errs []error

	for _, e := range node.All() {
		res := p.resolve(e)
		elems = append(elems, res.Value)
		errs = union(errs, res.Errors...)
	}

	return Result{Value: value.Array(elems...), Errors: errs}
}

// expand evaluates invocation node of macro m: arguments first, then the
// handler, then the handler's result.
func (p *Pass) expand(m Macro, node value.Value) Result {
	if err := p.ctx.Err(); err != nil {
		return Failed(node, ErrCanceled.Wrap(err))
	}

	if p.depth >= p.r.maxDepth {
		return Failed(node, ErrMaxDepthExceeded.Wrap(errorf(node)).
			With(slog.Int("max_depth", p.r.maxDepth)))
	}

	p.depth++
	defer func() { p.depth-- }()

	resolved := p.resolveArray(node)

	p.Logger().TraceContext(p.ctx, "macro dispatch",
		slog.String("macro", m.Name),
		slog.String("invocation", resolved.Value.String()),
		slog.Int("depth", p.depth),
	)

	args, err := m.Params.Bind(resolved.Value)
	if err != nil {
		return Failed(resolved.Value, union(resolved.Errors, err)...)
	}

	res := m.Eval(p, args)
	if !res.Success() {
		return res.prepend(resolved.Errors)
	}

	return p.resolve(res.Value).prepend(resolved.Errors)
}

// contextual reports whether r carries an error that depends on the state
// of the pass rather than on the referenced member alone.
func contextual(r Result) bool {
	for _, err := range r.Errors {
		if isCycle(err) || errors.Is(err, ErrMaxDepthExceeded) || errors.Is(err, ErrCanceled) {
			return true
		}
	}

	return false
}
