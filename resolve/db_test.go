package resolve

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/cropenv/value"
)

const soilProfileSchema = `
CREATE TABLE soil_profile (
	id INTEGER NOT NULL,
	layer_depth REAL,
	soil_organic_carbon REAL,
	soil_organic_matter REAL,
	bulk_density REAL,
	raw_density REAL,
	sand REAL,
	clay REAL,
	ph REAL,
	KA5_texture_class TEXT,
	permanent_wilting_point REAL,
	field_capacity REAL,
	saturation REAL,
	soil_water_conductivity_coefficient REAL,
	sceleton REAL,
	soil_ammonium REAL,
	soil_nitrate REAL,
	c_n REAL,
	initial_soil_moisture REAL,
	layer_description TEXT,
	is_in_groundwater INTEGER,
	is_impenetrable INTEGER
)`

// writeSoilDB creates a database holding profile 1 with three layers, the
// second of which lacks a density, and profile 2 with no usable layer.
func writeSoilDB(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "soil.sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		soilProfileSchema,
		`INSERT INTO soil_profile (id, layer_depth, soil_organic_carbon, bulk_density, sand, clay, ph, KA5_texture_class, is_in_groundwater)
			VALUES (1, 0.3, 1.2, 1400, 40, 10, 6.5, 'Sl3', 0)`,
		`INSERT INTO soil_profile (id, layer_depth, soil_organic_carbon, sand, clay)
			VALUES (1, 0.6, 0.8, 40, 10)`,
		`INSERT INTO soil_profile (id, layer_depth, soil_organic_matter, raw_density, KA5_texture_class, is_impenetrable)
			VALUES (1, 1.0, 0.5, 1650, 'Ls2', 1)`,
		`INSERT INTO soil_profile (id, layer_depth, sand, clay)
			VALUES (2, 0.3, 40, 10)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(t.Context(), stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	return path
}

func TestSoilProfile(t *testing.T) {
	path := writeSoilDB(t, t.TempDir())

	layers, err := SoilProfile(t.Context(), path, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(layers))
	}

	number := func(l value.Value, key string) float64 {
		t.Helper()

		v, ok := l.Lookup(key)
		if !ok {
			t.Fatalf("layer %s has no %q", l, key)
		}

		f, ok := v.Index(0).AsNumber()
		if !ok {
			t.Fatalf("%q = %s, want [number, unit]", key, v)
		}

		return f
	}

	top, bottom := layers[0], layers[1]

	if got := number(top, "Thickness"); !near(got, 0.3) {
		t.Errorf("top Thickness = %v, want 0.3", got)
	}

	if got := number(top, "Sand"); !near(got, 0.4) {
		t.Errorf("top Sand = %v, want 0.4", got)
	}

	if got := number(top, "SoilBulkDensity"); got != 1400 {
		t.Errorf("top SoilBulkDensity = %v, want 1400", got)
	}

	if v, _ := top.Get("is_in_groundwater"); !v.Equal(value.Bool(false)) {
		t.Errorf("top is_in_groundwater = %s", v)
	}

	if v, _ := top.Get("type"); !v.Equal(value.Str("SoilParameters")) {
		t.Errorf("top type = %s", v)
	}

	// The skipped middle layer's thickness belongs to the bottom layer.
	if got := number(bottom, "Thickness"); !near(got, 0.7) {
		t.Errorf("bottom Thickness = %v, want 0.7", got)
	}

	if got := number(bottom, "SoilOrganicMatter"); !near(got, 0.005) {
		t.Errorf("bottom SoilOrganicMatter = %v, want 0.005", got)
	}

	if got := number(bottom, "SoilRawDensity"); got != 1650 {
		t.Errorf("bottom SoilRawDensity = %v, want 1650", got)
	}

	if v, _ := bottom.Get("is_impenetrable"); !v.Equal(value.Bool(true)) {
		t.Errorf("bottom is_impenetrable = %s", v)
	}
}

func TestSoilProfileErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeSoilDB(t, dir)

	tests := []struct {
		name    string
		path    string
		profile int64
		err     error
	}{
		{"missing file", filepath.Join(dir, "none.sqlite"), 1, ErrFileNotFound},
		{"no complete layer", path, 2, ErrDatabase},
		{"unknown profile", path, 99, ErrDatabase},
		{"not a database", writeFile(t, dir, "soil.json", `{"not": "sqlite"}`), 1, ErrDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SoilProfile(t.Context(), tt.path, tt.profile); !errors.Is(err, tt.err) {
				t.Errorf("SoilProfile() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestSoilProfileFromDBMacro(t *testing.T) {
	dir := t.TempDir()
	writeSoilDB(t, dir)

	doc := `{
		"include-file-base-path": "` + filepath.ToSlash(dir) + `",
		"layers": ["soil-profile-from-db", "soil.sqlite", 1],
		"missing": ["soil-profile-from-db", "gone.sqlite", 1]
	}`

	res := resolveString(t, New(), doc)

	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrFileNotFound) {
		t.Fatalf("errors = %v, want one ErrFileNotFound", res.Messages())
	}

	if layers, _ := res.Value.Get("layers"); layers.Len() != 2 {
		t.Errorf("layers = %s, want 2 layers", layers)
	}

	if missing, _ := res.Value.Get("missing"); !missing.Equal(value.MustParse(`["soil-profile-from-db", "gone.sqlite", 1]`)) {
		t.Errorf("placeholder = %s", missing)
	}

	res = resolveString(t, New(), `["soil-profile-from-db", "soil.sqlite", 1.5]`)
	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrMalformedMacroArguments) {
		t.Errorf("errors = %v, want ErrMalformedMacroArguments", res.Messages())
	}
}
