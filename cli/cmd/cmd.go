package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cropenv/resolve"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type resolverKey struct{}

// WithResolver returns a new context.Context carrying the resolver used by
// every command.
func WithResolver(ctx context.Context, r *resolve.Resolver) context.Context {
	return context.WithValue(ctx, resolverKey{}, r)
}

// resolverFrom returns the resolver stored by WithResolver, or a resolver
// with default options.
func resolverFrom(ctx context.Context) *resolve.Resolver {
	if r, ok := ctx.Value(resolverKey{}).(*resolve.Resolver); ok && r != nil {
		return r
	}

	return resolve.New()
}

// writers returns the output streams of the kong application, falling back
// to the process streams.
func writers(ctx context.Context) (stdout, stderr io.Writer) {
	stdout, stderr = os.Stdout, os.Stderr

	if ktx := kongContextFrom(ctx); ktx != nil {
		if ktx.Stdout != nil {
			stdout = ktx.Stdout
		}

		if ktx.Stderr != nil {
			stderr = ktx.Stderr
		}
	}

	return stdout, stderr
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"
