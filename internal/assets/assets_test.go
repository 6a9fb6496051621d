package assets

import (
	"encoding/json"
	"testing"
)

// ---------------------------------------------------------------------------
// TestLoadGeneTable - Embedded Template Space
// ---------------------------------------------------------------------------

func TestLoadGeneTable(t *testing.T) {
	t.Parallel()

	table, err := LoadGeneTable()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"classic", "metro", "executive", "verde", "bordeaux", "mono"} {
		if _, ok := table.Templates[name]; !ok {
			t.Errorf("template %q missing", name)
		}
	}

	// Load already validated cross-references; spot-check one tuple end
	// to end anyway.
	g := table.Templates["classic"]
	if _, ok := table.ColorSchemes[g.Colors]; !ok {
		t.Errorf("classic references unknown color scheme %q", g.Colors)
	}
	if _, ok := table.Typography[g.Typography]; !ok {
		t.Errorf("classic references unknown typography %q", g.Typography)
	}
	if table.Density[g.Density].Unit <= 0 {
		t.Errorf("classic density unit = %v", table.Density[g.Density].Unit)
	}
}

// ---------------------------------------------------------------------------
// TestLoadRegionTable - Embedded Region Rules
// ---------------------------------------------------------------------------

func TestLoadRegionTable(t *testing.T) {
	t.Parallel()

	table, err := LoadRegionTable()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"usa", "uk", "dach", "fr", "br", "jp"} {
		if _, ok := table[id]; !ok {
			t.Errorf("region %q missing", id)
		}
	}

	if table["usa"].Paper != "letter" {
		t.Errorf("usa paper = %q, want letter", table["usa"].Paper)
	}
	if table["dach"].Paper != "a4" {
		t.Errorf("dach paper = %q, want a4", table["dach"].Paper)
	}
	if !table["usa"].Suppress.Photo {
		t.Error("usa must suppress photos")
	}
	if table["jp"].NameOrder != "family-first" {
		t.Errorf("jp name order = %q", table["jp"].NameOrder)
	}
}

// ---------------------------------------------------------------------------
// TestLoadLabels - Embedded Locale Strings
// ---------------------------------------------------------------------------

func TestLoadLabels(t *testing.T) {
	t.Parallel()

	labels, err := LoadLabels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, loc := range []string{"en", "de", "fr", "pt-br", "ja"} {
		if _, ok := labels[loc]; !ok {
			t.Errorf("locale %q missing", loc)
		}
	}

	// Load enforces the required key set; check one translated value so a
	// copy-paste of the en block would be caught.
	if got := labels["de"]["present"]; got != "heute" {
		t.Errorf(`de present = %q, want "heute"`, got)
	}
}

// ---------------------------------------------------------------------------
// TestProfileSchema - Embedded JSON Schema
// ---------------------------------------------------------------------------

func TestProfileSchema(t *testing.T) {
	t.Parallel()

	raw := ProfileSchema()
	if len(raw) == 0 {
		t.Fatal("schema is empty")
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema has no properties object")
	}
	for _, key := range []string{"personal", "experience", "education", "skills", "languages", "links"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}
