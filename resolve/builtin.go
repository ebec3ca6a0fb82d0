package resolve

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/cropenv/soil"
	"github.com/ardnew/cropenv/value"
)

func builtins() []Macro {
	return []Macro{
		{
			Name:   "ref",
			Params: Signature{{"key1", String}, {"key2", String}},
			Doc:    "value of root[key1][key2], resolved against the root",
			Eval:   evalRef,
		},
		{
			Name:   "include-from-file",
			Params: Signature{{"path", String}},
			Doc:    "document loaded from path, relative to " + BasePathKey,
			Eval:   evalIncludeFromFile,
		},
		{
			Name:   "%",
			Params: Signature{{"v", Number}},
			Doc:    "percent to fraction, v / 100",
			Eval:   evalPercent,
		},
		{
			Name:    "humus-class->corg",
			Aliases: []string{"humus_st2corg"},
			Params:  Signature{{"class", Integer}},
			Doc:     "organic carbon (mass% [0-100]) of a humus class 0-7",
			Eval:    evalHumusClassToCorg,
		},
		{
			Name:    "bulk-density-class->raw-density",
			Aliases: []string{"ld_eff2trd"},
			Params:  Signature{{"class", Integer}, {"clay", Number}},
			Doc:     "raw density (kg m-3) of a bulk density class 1-5 and clay fraction",
			Eval:    evalBulkDensityClassToRawDensity,
		},
		{
			Name:    "KA5-texture-class->clay",
			Aliases: []string{"KA5TextureClass2clay"},
			Params:  Signature{{"code", String}},
			Doc:     "clay fraction of a KA5 texture class",
			Eval:    evalKA5(func(t soil.Texture) float64 { return t.Clay }),
		},
		{
			Name:    "KA5-texture-class->sand",
			Aliases: []string{"KA5TextureClass2sand"},
			Params:  Signature{{"code", String}},
			Doc:     "sand fraction of a KA5 texture class",
			Eval:    evalKA5(func(t soil.Texture) float64 { return t.Sand }),
		},
		{
			Name:    "sand-and-clay->lambda",
			Aliases: []string{"sandAndClay2lambda"},
			Params:  Signature{{"sand", Number}, {"clay", Number}},
			Doc:     "soil water conductivity coefficient from sand and clay fractions",
			Eval:    evalSandAndClayToLambda,
		},
		{
			Name:   "sand-and-clay->KA5-texture-class",
			Params: Signature{{"sand", Number}, {"clay", Number}},
			Doc:    "KA5 texture class of sand and clay fractions",
			Eval:   evalSandAndClayToKA5,
		},
		{
			Name:   "expr",
			Params: Signature{{"source", String}},
			Doc:    "result of an expression over the root document",
			Eval:   evalExpr,
		},
		{
			Name:   "soil-profile-from-db",
			Params: Signature{{"path", String}, {"profile", Integer}},
			Doc:    "soil layers of a profile in a SQLite soil database",
			Eval:   evalSoilProfileFromDB,
		},
	}
}

func evalRef(p *Pass, args Args) Result {
	return p.Ref(args, args.Str(0), args.Str(1))
}

func evalIncludeFromFile(p *Pass, args Args) Result {
	path := includePath(p.Root(), args.Str(0))

	v, err := p.Loader().Load(p.Context(), path)
	if err != nil {
		return p.Fail(args, err)
	}

	return Succeed(v)
}

func evalPercent(_ *Pass, args Args) Result {
	return Succeed(value.Num(args.Number(0) / 100.0))
}

func evalHumusClassToCorg(_ *Pass, args Args) Result {
	return Succeed(value.Num(soil.HumusClassToCorg(args.Int(0))))
}

func evalBulkDensityClassToRawDensity(_ *Pass, args Args) Result {
	return Succeed(value.Num(soil.BulkDensityClassToRawDensity(args.Int(0), args.Number(1))))
}

func evalKA5(field func(soil.Texture) float64) Handler {
	return func(p *Pass, args Args) Result {
		code := args.Str(0)

		t, ok := soil.KA5Texture(code)
		if !ok {
			if p.Strict() {
				return p.Fail(args, ErrUnknownTextureClass.Wrap(errorf(args.Invocation())).
					With(slog.String("code", code)))
			}

			p.Logger().WarnContext(p.Context(), "unknown KA5 texture class, using default",
				slog.String("code", code),
				slog.Float64("sand", soil.DefaultTexture.Sand),
				slog.Float64("clay", soil.DefaultTexture.Clay),
			)

			t = soil.DefaultTexture
		}

		return Succeed(value.Num(field(t)))
	}
}

func evalSandAndClayToLambda(_ *Pass, args Args) Result {
	return Succeed(value.Num(soil.SandAndClayToLambda(args.Number(0), args.Number(1))))
}

func evalSandAndClayToKA5(p *Pass, args Args) Result {
	code, ok := soil.SandAndClayToKA5(args.Number(0), args.Number(1))
	if !ok {
		return p.Fail(args, ErrOutOfRange.Wrap(
			fmt.Errorf("%s: sand and clay must be fractions with sum at most 1", args.Invocation())))
	}

	return Succeed(value.Str(code))
}
