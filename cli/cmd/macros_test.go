package cmd

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/cropenv/resolve"
)

func TestMatchMacros(t *testing.T) {
	table := resolve.DefaultTable()

	all := matchMacros(table, "")
	if len(all) != len(table.Macros()) {
		t.Fatalf("empty pattern matched %d macros, want %d", len(all), len(table.Macros()))
	}

	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Macro.Name
	}

	if !slices.IsSorted(names) {
		t.Errorf("listing not sorted: %v", names)
	}

	tests := []struct {
		pattern string
		first   string
		via     string
	}{
		{"ld_eff", "bulk-density-class->raw-density", "ld_eff2trd"},
		{"humus", "humus-class->corg", ""},
		{"soilprof", "soil-profile-from-db", ""},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := matchMacros(table, tt.pattern)
			if len(got) == 0 {
				t.Fatalf("no match for %q", tt.pattern)
			}

			if got[0].Macro.Name != tt.first || (tt.via != "" && got[0].Match.Str != tt.via) {
				t.Errorf("best match = %s via %s, want %s via %s",
					got[0].Macro.Name, got[0].Match.Str, tt.first, tt.via)
			}

			seen := map[string]bool{}
			for _, m := range got {
				if seen[m.Macro.Name] {
					t.Errorf("%s listed twice", m.Macro.Name)
				}

				seen[m.Macro.Name] = true
			}
		})
	}

	if got := matchMacros(table, "qqqq"); len(got) != 0 {
		t.Errorf("nonsense pattern matched %d macros", len(got))
	}
}

func TestMacrosRun(t *testing.T) {
	ctx, stdout, _ := newContext(t, &struct{}{}, nil)

	if err := (&Macros{Pattern: "KA5TextureClass2clay"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out := stdout.String()
	for _, want := range []string{"KA5-texture-class->clay", "aka", "KA5TextureClass2clay"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
