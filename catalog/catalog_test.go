package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"P-51 Mustang", "p_51_mustang"},
		{"Spitfire", "spitfire"},
		{"AC-130", "ac_130"},
		{"F4U Corsair", "f4u_corsair"},
		{"  A-10   Warthog!  ", "a_10_warthog"},
		{"B-2 Spirit", "b_2_spirit"},
	}

	for _, tc := range cases {
		if got := NormalizeID(tc.in); got != tc.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchText(t *testing.T) {
	cat := Default()

	cases := []struct {
		text string
		want string
	}{
		{"what is the speed of the spitfire", "Spitfire"},
		{"is the p51 any good", "P-51 Mustang"},
		{"tell me about the Mustang", "P-51 Mustang"},
		{"warthog loadout", "A-10 Warthog"},
		{"the supermarine spitfire history", "Spitfire"},
	}

	for _, tc := range cases {
		item, ok := cat.MatchText(tc.text)
		if !ok {
			t.Errorf("MatchText(%q): no match", tc.text)
			continue
		}
		if item.Name != tc.want {
			t.Errorf("MatchText(%q) = %s, want %s", tc.text, item.Name, tc.want)
		}
	}

	if _, ok := cat.MatchText("how do I sell oil"); ok {
		t.Error("expected no match for unrelated text")
	}
}

func TestMatchName(t *testing.T) {
	cat := Default()

	item, ok := cat.MatchName("spitfire")
	if !ok || item.Name != "Spitfire" {
		t.Fatalf("MatchName(spitfire) = %+v, %v", item, ok)
	}

	item, ok = cat.MatchName("Mustang")
	if !ok || item.Name != "P-51 Mustang" {
		t.Fatalf("MatchName(Mustang) = %+v, %v", item, ok)
	}

	if _, ok := cat.MatchName("unknown plane"); ok {
		t.Fatal("expected no match for unknown name")
	}
	if _, ok := cat.MatchName("  "); ok {
		t.Fatal("expected no match for blank name")
	}
}

func TestMentionedIn(t *testing.T) {
	item := Item{Name: "P-51 Mustang", Aliases: []string{"p51", "mustang"}}

	if !item.MentionedIn("the MUSTANG is fast") {
		t.Fatal("expected alias mention to match case-insensitively")
	}
	if item.MentionedIn("the corsair is slow") {
		t.Fatal("expected no mention")
	}
}

func TestDocBase(t *testing.T) {
	derived := Item{Name: "P-51 Mustang"}
	if got := derived.DocBase(); got != "p_51_mustang" {
		t.Fatalf("DocBase() = %q", got)
	}

	explicit := Item{Name: "P-51D Mustang (2024 rework)", DocID: "p_51_mustang"}
	if got := explicit.DocBase(); got != "p_51_mustang" {
		t.Fatalf("DocBase() with override = %q", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `items:
  - name: Spitfire
    aliases: [supermarine spitfire]
  - name: AC-130
    entity_type: aircraft
    aliases: [ac130]
    doc_id: ac_130
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	items := cat.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].EntityType != EntityAircraft {
		t.Fatalf("expected default entity type, got %q", items[0].EntityType)
	}
	if items[1].DocBase() != "ac_130" {
		t.Fatalf("expected explicit doc id, got %q", items[1].DocBase())
	}
}

func TestLoadRejectsEmptyAndInvalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("items: []\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Fatal("expected error for empty catalog")
	}

	unnamed := filepath.Join(dir, "unnamed.yaml")
	if err := os.WriteFile(unnamed, []byte("items:\n  - aliases: [x]\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(unnamed); err == nil {
		t.Fatal("expected error for item without name")
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
