package envdoc

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/cropenv/log"
	"github.com/ardnew/cropenv/value"
)

// Documents are the inputs of one simulation run. Climate, when not empty,
// is inline climate CSV text and replaces the sim document's climate.csv
// path.
type Documents struct {
	Crop    value.Value
	Site    value.Value
	Sim     value.Value
	Climate string
}

// Site parameter groups copied into the parameter bundle, keyed by their
// name in the bundle.
var siteGroups = [...]struct{ key, group string }{
	{"userEnvironmentParameters", "EnvironmentParameters"},
	{"userSoilMoistureParameters", "SoilMoistureParameters"},
	{"userSoilTemperatureParameters", "SoilTemperatureParameters"},
	{"userSoilTransportParameters", "SoilTransportParameters"},
	{"userSoilOrganicParameters", "SoilOrganicParameters"},
}

var outputClasses = [...]struct{ key, class string }{
	{"dailyOutputIds", "daily"},
	{"monthlyOutputIds", "monthly"},
	{"yearlyOutputIds", "yearly"},
	{"cropOutputIds", "crop"},
	{"runOutputIds", "run"},
}

type config struct {
	catalog Catalog
	logger  log.Logger
}

// Option configures [Assemble] and [Compose].
type Option func(*config)

// WithCatalog sets the output catalog used to fill in output ids and units.
func WithCatalog(c Catalog) Option {
	return func(cfg *config) { cfg.catalog = c }
}

// WithLogger sets the logger for progress output.
func WithLogger(logger log.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

func makeConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func missing(doc, key string) error {
	return ErrMissingRequiredKey.
		Wrap(fmt.Errorf("%s document: %q", doc, key)).
		With(slog.String("document", doc), slog.String("key", key))
}

// require returns the members of v named by keys, or an error naming the
// first one missing.
func require(doc string, v value.Value, keys ...string) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(keys))

	for _, key := range keys {
		m, ok := v.Get(key)
		if !ok {
			return nil, missing(doc, key)
		}

		out[key] = m
	}

	return out, nil
}

// Assemble builds the environment document from resolved documents. It
// performs no macro resolution.
func Assemble(docs Documents, opts ...Option) (value.Value, error) {
	cfg := makeConfig(opts)

	crop, err := require("crop", docs.Crop, "cropRotation", "CropParameters")
	if err != nil {
		return value.Value{}, err
	}

	groupKeys := []string{"SiteParameters"}
	for _, g := range siteGroups {
		groupKeys = append(groupKeys, g.group)
	}

	site, err := require("site", docs.Site, groupKeys...)
	if err != nil {
		return value.Value{}, err
	}

	sim, err := require("sim", docs.Sim, "output", "climate.csv-options")
	if err != nil {
		return value.Value{}, err
	}

	params := map[string]value.Value{
		"type":                 value.Str("CentralParameterProvider"),
		"userCropParameters":   crop["CropParameters"],
		"simulationParameters": docs.Sim,
		"siteParameters":       site["SiteParameters"],
	}
	for _, g := range siteGroups {
		params[g.key] = site[g.group]
	}

	if gw, ok := docs.Site.Get("groundwaterInformation"); ok && !gw.IsNull() {
		params["groundwaterInformation"] = gw
	}

	env := map[string]value.Value{
		"type":         value.Str("Env"),
		"debugMode":    value.Bool(false),
		"params":       value.Object(params),
		"cropRotation": crop["cropRotation"],
	}

	if debug, ok := docs.Sim.Get("debug?"); ok {
		if b, ok := debug.AsBool(); ok {
			env["debugMode"] = value.Bool(b)
		}
	}

	if v, ok := docs.Crop.Get("cropRotations"); ok {
		env["cropRotations"] = v
	}

	// Secondary rotations are only taken when they are lists.
	for _, key := range []string{"cropRotation2", "cropRotations2"} {
		if v, ok := docs.Crop.Get(key); ok && v.Kind() == value.KindArray {
			env[key] = v
		}
	}

	for _, key := range []string{"events", "events2"} {
		if v, ok := sim["output"].Get(key); ok {
			env[key] = v
		}
	}

	env["outputs"] = value.Object(map[string]value.Value{
		"output": value.Object(map[string]value.Value{
			"obj-outputs?": value.Bool(objOutputs(sim["output"])),
		}),
	})

	if err := assembleOutputs(env, sim["output"], cfg.catalog); err != nil {
		return value.Value{}, err
	}

	if err := assembleClimate(env, docs, site["SiteParameters"], sim["climate.csv-options"]); err != nil {
		return value.Value{}, err
	}

	cfg.logger.Debug("environment assembled",
		slog.Int("crop_rotation", crop["cropRotation"].Len()),
		slog.Bool("inline_climate", docs.Climate != ""),
	)

	return value.Object(env), nil
}

func assembleOutputs(env map[string]value.Value, output value.Value, catalog Catalog) error {
	for _, c := range outputClasses {
		list, _ := output.Get(c.class)

		ids, err := ParseOutputIDs(list, catalog)
		if err != nil {
			return err
		}

		env[c.key] = ids
	}

	at, _ := output.Get("at")

	ids, ok, err := parseAtOutputIDs(at, catalog)
	if err != nil {
		return err
	}

	if ok {
		env["atOutputIds"] = ids
	}

	return nil
}

func assembleClimate(env map[string]value.Value, docs Documents, siteParams, options value.Value) error {
	env["climateCSV"] = value.Str(docs.Climate)
	env["pathToClimateCSV"] = value.Str("")

	if path, ok := docs.Sim.Get("climate.csv"); ok {
		env["pathToClimateCSV"] = path
	} else if docs.Climate == "" {
		return missing("sim", "climate.csv")
	}

	for _, key := range []string{"start-date", "end-date", "use-leap-years"} {
		if v, ok := docs.Sim.Get(key); ok {
			options = options.Set(key, v)
		}
	}

	latitude := value.Num(0)
	if lat, ok := siteParams.Get("Latitude"); ok {
		if _, ok := lat.AsNumber(); ok {
			latitude = lat
		}
	}

	options = options.Set("latitude", latitude)

	env["csvViaHeaderOptions"] = options

	return nil
}

// objOutputs reports whether output requests object-shaped results. The
// flag is read from "obj-outputs?" or, failing that, "obj-outputs".
func objOutputs(output value.Value) bool {
	for _, key := range []string{"obj-outputs?", "obj-outputs"} {
		if v, ok := output.Get(key); ok {
			b, _ := v.AsBool()

			return b
		}
	}

	return false
}
