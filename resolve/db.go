package resolve

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	_ "modernc.org/sqlite" // database/sql driver "sqlite"

	"github.com/ardnew/cropenv/value"
)

const soilProfileQuery = `
SELECT
	layer_depth,
	soil_organic_carbon,
	soil_organic_matter,
	bulk_density,
	raw_density,
	sand,
	clay,
	ph,
	KA5_texture_class,
	permanent_wilting_point,
	field_capacity,
	saturation,
	soil_water_conductivity_coefficient,
	sceleton,
	soil_ammonium,
	soil_nitrate,
	c_n,
	initial_soil_moisture,
	layer_description,
	is_in_groundwater,
	is_impenetrable
FROM soil_profile
WHERE id = ?
ORDER BY id, layer_depth`

type soilRow struct {
	depth, soc, som, bulkDensity, rawDensity sql.NullFloat64
	sand, clay, ph                           sql.NullFloat64
	ka5                                      sql.NullString
	pwp, fc, saturation, lambda, sceleton    sql.NullFloat64
	ammonium, nitrate, cn, moisture          sql.NullFloat64
	description                              sql.NullString
	inGroundwater, impenetrable              sql.NullInt64
}

func (r *soilRow) fields() []any {
	return []any{
		&r.depth, &r.soc, &r.som, &r.bulkDensity, &r.rawDensity,
		&r.sand, &r.clay, &r.ph, &r.ka5,
		&r.pwp, &r.fc, &r.saturation, &r.lambda, &r.sceleton,
		&r.ammonium, &r.nitrate, &r.cn, &r.moisture,
		&r.description, &r.inGroundwater, &r.impenetrable,
	}
}

// layer builds the soil parameters of r. Thickness is measured from
// prevDepth.
func (r *soilRow) layer(prevDepth float64) map[string]value.Value {
	l := map[string]value.Value{"type": value.Str("SoilParameters")}

	withUnit := func(key string, v float64, unit string) {
		l[key] = value.Array(value.Num(v), value.Str(unit))
	}

	if r.depth.Valid {
		withUnit("Thickness", r.depth.Float64-prevDepth, "m")
	}

	if r.ka5.Valid {
		l["KA5TextureClass"] = value.Str(r.ka5.String)
	}

	if r.sand.Valid {
		withUnit("Sand", r.sand.Float64/100, "% [0-1]")
	}

	if r.clay.Valid {
		withUnit("Clay", r.clay.Float64/100, "% [0-1]")
	}

	if r.ph.Valid {
		l["pH"] = value.Num(r.ph.Float64)
	}

	if r.sceleton.Valid {
		withUnit("Sceleton", r.sceleton.Float64/100, "vol% [0-1]")
	}

	switch {
	case r.soc.Valid:
		withUnit("SoilOrganicCarbon", r.soc.Float64, "mass% [0-100]")
	case r.som.Valid:
		withUnit("SoilOrganicMatter", r.som.Float64/100, "mass% [0-1]")
	}

	switch {
	case r.bulkDensity.Valid:
		withUnit("SoilBulkDensity", r.bulkDensity.Float64, "kg m-3")
	case r.rawDensity.Valid:
		withUnit("SoilRawDensity", r.rawDensity.Float64, "kg m-3")
	}

	if r.fc.Valid {
		withUnit("FieldCapacity", r.fc.Float64/100, "vol% [0-1]")
	}

	if r.pwp.Valid {
		withUnit("PermanentWiltingPoint", r.pwp.Float64/100, "vol% [0-1]")
	}

	if r.saturation.Valid {
		withUnit("PoreVolume", r.saturation.Float64/100, "vol% [0-1]")
	}

	if r.moisture.Valid {
		withUnit("SoilMoisturePercentFC", r.moisture.Float64, "% [0-100]")
	}

	if r.lambda.Valid {
		l["Lambda"] = value.Num(r.lambda.Float64)
	}

	if r.ammonium.Valid {
		withUnit("SoilAmmonium", r.ammonium.Float64, "kg NH4-N m-3")
	}

	if r.nitrate.Valid {
		withUnit("SoilNitrate", r.nitrate.Float64, "kg NO3-N m-3")
	}

	if r.cn.Valid {
		l["CN"] = value.Num(r.cn.Float64)
	}

	if r.description.Valid {
		l["description"] = value.Str(r.description.String)
	}

	if r.inGroundwater.Valid {
		l["is_in_groundwater"] = value.Bool(r.inGroundwater.Int64 == 1)
	}

	if r.impenetrable.Valid {
		l["is_impenetrable"] = value.Bool(r.impenetrable.Int64 == 1)
	}

	return l
}

// complete reports whether l has a thickness, an organic content, a density
// and either a texture or the full set of hydraulic parameters.
func complete(l map[string]value.Value) bool {
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := l[k]; !ok {
				return false
			}
		}

		return true
	}

	return has("Thickness") &&
		(has("SoilOrganicCarbon") || has("SoilOrganicMatter")) &&
		(has("SoilBulkDensity") || has("SoilRawDensity")) &&
		(has("KA5TextureClass") || has("Sand", "Clay") ||
			has("PermanentWiltingPoint", "FieldCapacity", "PoreVolume", "Lambda"))
}

// SoilProfile reads the layers of a profile from the SQLite database at
// path. Incomplete layers are skipped; their thickness is added to the next
// layer.
func SoilProfile(ctx context.Context, path string, profile int64) ([]value.Value, error) {
	// The driver creates missing files, so check first.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound.Wrap(err).With(slog.String("path", path))
		}

		return nil, ErrDatabase.Wrap(err).With(slog.String("path", path))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ErrDatabase.Wrap(err).With(slog.String("path", path))
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, soilProfileQuery, profile)
	if err != nil {
		return nil, ErrDatabase.Wrap(err).With(slog.String("path", path))
	}
	defer rows.Close()

	var (
		layers    []value.Value
		prevDepth float64
	)

	for rows.Next() {
		var r soilRow
		if err := rows.Scan(r.fields()...); err != nil {
			return nil, ErrDatabase.Wrap(err).With(slog.String("path", path))
		}

		l := r.layer(prevDepth)
		if !complete(l) {
			continue
		}

		if r.depth.Valid {
			prevDepth = r.depth.Float64
		}

		layers = append(layers, value.Object(l))
	}

	if err := rows.Err(); err != nil {
		return nil, ErrDatabase.Wrap(err).With(slog.String("path", path))
	}

	if len(layers) == 0 {
		return nil, ErrDatabase.Wrap(fmt.Errorf("no complete layers for profile %d", profile)).
			With(slog.String("path", path))
	}

	return layers, nil
}

func evalSoilProfileFromDB(p *Pass, args Args) Result {
	layers, err := SoilProfile(p.Context(), includePath(p.Root(), args.Str(0)), args.Int(1))
	if err != nil {
		return p.Fail(args, err)
	}

	p.Logger().TraceContext(p.Context(), "soil profile loaded",
		slog.Int64("profile", args.Int(1)),
		slog.Int("layers", len(layers)),
	)

	return Succeed(value.Array(layers...))
}
