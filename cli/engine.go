package cli

import (
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cropenv/loader"
	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/resolve"
)

// resolverConfig holds the flags of the macro resolver shared by every
// command.
type resolverConfig struct {
	CacheRefs            bool `default:"true"        help:"Reuse the first resolution of each reference within a document." negatable:""`
	StrictTextureClasses bool `default:"false"       help:"Fail on unknown KA5 texture classes instead of using a default texture."`
	MaxDepth             int  `default:"${maxDepth}" help:"Maximum nesting of macro expansions."`
	LoaderCache          bool `default:"true"        help:"Reuse documents decoded from identical content." negatable:""`
}

func (*resolverConfig) vars() kong.Vars {
	return kong.Vars{"maxDepth": strconv.Itoa(resolve.DefaultMaxDepth)}
}

func (*resolverConfig) group() kong.Group {
	return kong.Group{Key: "resolver", Title: "Resolver options"}
}

// resolver builds the resolver configured by the flags. It logs through the
// default logger.
func (f *resolverConfig) resolver() *resolve.Resolver {
	logger := log.Default()

	return resolve.New(
		resolve.WithLogger(logger),
		resolve.WithLoader(loader.New(
			loader.WithLogger(logger),
			loader.WithCache(f.LoaderCache),
		)),
		resolve.WithMaxDepth(f.MaxDepth),
		resolve.WithCacheRefs(f.CacheRefs),
		resolve.WithStrictTextureClasses(f.StrictTextureClasses),
	)
}
