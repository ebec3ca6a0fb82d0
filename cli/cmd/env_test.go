package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/cropenv/envdoc"
	"github.com/ardnew/cropenv/resolve"
	"github.com/ardnew/cropenv/value"
)

const (
	cropJSON = `{"cropRotation": [{"worksteps": []}], "CropParameters": {"share": ["%", 40]}}`
	siteJSON = `{
		"SiteParameters": {"Latitude": 48.1, "soil": ["include-from-file", "layers.json"]},
		"EnvironmentParameters": {}, "SoilMoistureParameters": {},
		"SoilTemperatureParameters": {}, "SoilTransportParameters": {},
		"SoilOrganicParameters": {}
	}`
	simJSON = `{
		"output": {"daily": ["Date", "Yield"]},
		"climate.csv-options": {"csv-separator": ","},
		"climate.csv": "weather.csv",
		"start-date": "2000-01-01"
	}`
)

// envFiles writes a crop, site and sim document set into a temporary
// directory.
func envFiles(t *testing.T) (dir string, c Env) {
	t.Helper()

	dir = t.TempDir()
	writeFile(t, dir, "layers.json", `[{"Thickness": 0.3}]`)

	c = Env{
		Encoding: output{Format: FormatJSON, Indent: 2},
		Crop:     writeFile(t, dir, "crop.json", cropJSON),
		Site:     writeFile(t, dir, "site.json", siteJSON),
		Sim:      writeFile(t, dir, "sim.json", simJSON),
		Output:   stdoutSink,
	}

	return dir, c
}

func TestEnvRun(t *testing.T) {
	dir, c := envFiles(t)
	c.Catalog = writeFile(t, dir, "catalog.json", `{"Date": {"id": 0, "unit": ""}, "Yield": {"id": 7, "unit": "kg ha-1"}}`)

	ctx, stdout, stderr := newContext(t, &struct{}{}, nil)

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}

	env, err := value.Parse(stdout.Bytes())
	if err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}

	checks := []struct {
		path []string
		want string
	}{
		{[]string{"type"}, `"Env"`},
		{[]string{"params", "userCropParameters", "share"}, `0.4`},
		{[]string{"params", "siteParameters", "soil"}, `[{"Thickness": 0.3}]`},
		{[]string{"pathToClimateCSV"}, `"weather.csv"`},
		{[]string{"csvViaHeaderOptions", "latitude"}, `48.1`},
		{[]string{"csvViaHeaderOptions", "start-date"}, `"2000-01-01"`},
	}

	for _, ck := range checks {
		got, ok := env.Lookup(ck.path...)
		if !ok || !got.Equal(value.MustParse(ck.want)) {
			t.Errorf("%s = %s, want %s", strings.Join(ck.path, "."), got, ck.want)
		}
	}

	ids, _ := env.Get("dailyOutputIds")
	if ids.Len() != 2 {
		t.Fatalf("dailyOutputIds = %s", ids)
	}

	if id, _ := ids.Index(1).Lookup("id"); !id.Equal(value.Int(7)) {
		t.Errorf("Yield id = %s, want 7", id)
	}
}

func TestEnvRunInlineClimate(t *testing.T) {
	dir, c := envFiles(t)
	c.Climate = writeFile(t, dir, "weather.csv", "iso-date,tavg\n2000-01-01,1.5\n")
	c.Output = filepath.Join(dir, "env.yaml")
	c.Encoding.Format = FormatYAML

	ctx, _, _ := newContext(t, &struct{}{}, nil)

	if err := c.Run(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(c.Output)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "2000-01-01,1.5") {
		t.Errorf("climate CSV not embedded:\n%s", data)
	}
}

func TestEnvRunReportsFailures(t *testing.T) {
	dir, c := envFiles(t)
	c.Crop = writeFile(t, dir, "crop.json", `{"cropRotation": [], "CropParameters": {"a": ["ref", "nope", "x"], "b": ["%", "x"]}}`)

	ctx, stdout, stderr := newContext(t, &struct{}{}, nil)

	err := c.Run(ctx)
	if !errors.Is(err, envdoc.ErrResolveFailed) {
		t.Fatalf("Run error = %v, want ErrResolveFailed", err)
	}

	if stdout.Len() != 0 {
		t.Errorf("wrote output despite failures:\n%s", stdout.String())
	}

	report := stderr.String()
	for _, want := range []string{"environment: 2 errors", "unresolved reference", "malformed macro arguments"} {
		if !strings.Contains(report, want) {
			t.Errorf("report lacks %q:\n%s", want, report)
		}
	}
}

func TestEnvRunMissingKey(t *testing.T) {
	dir, c := envFiles(t)
	c.Sim = writeFile(t, dir, "sim.json", `{"output": {}, "climate.csv": "w.csv"}`)

	ctx, _, _ := newContext(t, &struct{}{}, nil)

	if err := c.Run(ctx); !errors.Is(err, envdoc.ErrMissingRequiredKey) {
		t.Errorf("Run error = %v, want ErrMissingRequiredKey", err)
	}
}

func TestEnvWatch(t *testing.T) {
	dir, c := envFiles(t)
	c.Output = filepath.Join(dir, "env.json")
	c.Watch = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kctx, _, _ := newContext(t, &struct{}{}, nil)
	ctx = WithContext(ctx, kongContextFrom(kctx))
	ctx = WithResolver(ctx, resolve.New(resolve.WithCacheRefs(false)))

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	share := func() value.Value {
		data, err := os.ReadFile(c.Output)
		if err != nil {
			return value.Null()
		}

		env, err := value.Parse(data)
		if err != nil {
			return value.Null()
		}

		v, _ := env.Lookup("params", "userCropParameters", "share")

		return v
	}

	waitFor := func(want value.Value) {
		t.Helper()

		deadline := time.Now().Add(5 * time.Second)
		for !share().Equal(want) {
			if time.Now().After(deadline) {
				t.Fatalf("share = %s, want %s", share(), want)
			}

			time.Sleep(20 * time.Millisecond)
		}
	}

	waitFor(value.Num(0.4))

	writeFile(t, dir, "crop.json", `{"cropRotation": [], "CropParameters": {"share": ["%", 90]}}`)
	waitFor(value.Num(0.9))

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
