package oracle

import (
	"testing"

	"github.com/wing9900/war-tycoon-oracle-bot/catalog"
	"github.com/wing9900/war-tycoon-oracle-bot/index"
)

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		question string
		want     Intent
	}{
		{"list all planes", Intent{ListAll: true}},
		{"show me every aircraft", Intent{ListAll: true}},
		{"how fast is the mustang", Intent{WantsSpeed: true}},
		{"what is the spitfire's top speed in mph", Intent{WantsSpeed: true}},
		{"how much health does the corsair have", Intent{WantsHealth: true}},
		{"give me the stats of the a-10", Intent{WantsSpeed: true, WantsHealth: true}},
		{"tell me about the b-2", Intent{WantsSpeed: true, WantsHealth: true}},
		{"who made the spitfire", Intent{}},
	}

	for _, tc := range cases {
		got := detectIntent(tc.question)
		if got != tc.want {
			t.Errorf("detectIntent(%q) = %+v, want %+v", tc.question, got, tc.want)
		}
	}
}

func TestResolvePrimaryItemPrefersSemanticMatchMention(t *testing.T) {
	cat := catalog.Default()

	matches := []index.Record{
		{ID: "x", ItemName: "AC-130"},
		{ID: "y", ItemName: "Spitfire"},
	}

	// The AC-130 match leads the result set but the question mentions
	// only the Spitfire.
	item, ok := resolvePrimaryItem(cat, "how good is the spitfire", matches)
	if !ok {
		t.Fatal("expected a primary item")
	}
	if item.Name != "Spitfire" {
		t.Fatalf("expected Spitfire, got %s", item.Name)
	}
}

func TestResolvePrimaryItemFallsBackToQuestionScan(t *testing.T) {
	cat := catalog.Default()

	item, ok := resolvePrimaryItem(cat, "what does the warthog cost", nil)
	if !ok {
		t.Fatal("expected a primary item from the question scan")
	}
	if item.Name != "A-10 Warthog" {
		t.Fatalf("expected A-10 Warthog, got %s", item.Name)
	}
}

func TestResolvePrimaryItemNoMatch(t *testing.T) {
	cat := catalog.Default()
	if _, ok := resolvePrimaryItem(cat, "how do I join a faction", nil); ok {
		t.Fatal("expected no primary item")
	}
}

func TestDocIDsForItem(t *testing.T) {
	item := catalog.Item{Name: "P-51 Mustang", EntityType: catalog.EntityAircraft}

	ids := docIDsForItem(item, Intent{WantsSpeed: true})
	want := []string{
		"p_51_mustang_overview_full_text",
		"p_51_mustang_general_info",
		"p_51_mustang_stat_speed",
	}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unexpected ids: got %v, want %v", ids, want)
		}
	}
}

func TestDocIDsForItemHonorsExplicitDocID(t *testing.T) {
	item := catalog.Item{Name: "P-51 Mustang (renamed)", DocID: "p_51_mustang"}

	ids := docIDsForItem(item, Intent{})
	if ids[0] != "p_51_mustang_overview_full_text" {
		t.Fatalf("expected explicit doc id to win, got %v", ids)
	}
}
