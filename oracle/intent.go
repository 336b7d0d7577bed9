package oracle

import (
	"strings"

	"github.com/wing9900/war-tycoon-oracle-bot/catalog"
	"github.com/wing9900/war-tycoon-oracle-bot/index"
)

var listAllTriggers = []string{
	"all planes",
	"all the planes",
	"all aircraft",
	"all of the planes",
	"every plane",
	"every aircraft",
	"list all planes",
	"list planes",
	"list the planes",
	"what planes",
	"which planes",
}

var speedKeywords = []string{"speed", "fast", "mph", "velocity"}

var healthKeywords = []string{"health", "hp", "durability", "survivab", "tanky"}

var genericStatKeywords = []string{"stats", "details", "info", "specs", "tell me about"}

// detectIntent runs the case-insensitive keyword heuristics over the
// question text. A generic stats/details question asks for both speed
// and health.
func detectIntent(question string) Intent {
	lowered := strings.ToLower(question)

	intent := Intent{
		ListAll:     containsAny(lowered, listAllTriggers),
		WantsSpeed:  containsAny(lowered, speedKeywords),
		WantsHealth: containsAny(lowered, healthKeywords),
	}
	if containsAny(lowered, genericStatKeywords) {
		intent.WantsSpeed = true
		intent.WantsHealth = true
	}
	return intent
}

// resolvePrimaryItem identifies the single item a question is about.
// Semantic matches are consulted first: a match's item_name counts only
// when the question text itself also mentions that item, so a stray
// nearest neighbor cannot hijack the lookup. Failing that, the question
// text is scanned directly against the catalog.
func resolvePrimaryItem(cat *catalog.Catalog, question string, matches []index.Record) (catalog.Item, bool) {
	for _, match := range matches {
		if match.ItemName == "" {
			continue
		}
		item, ok := cat.MatchName(match.ItemName)
		if !ok {
			continue
		}
		if item.MentionedIn(question) {
			return item, true
		}
	}
	return cat.MatchText(question)
}

// docIDsForItem derives the canonical per-item document ids to fetch for
// the detected intent. Overview and general info are always wanted; the
// stat documents only when the question asks for them.
func docIDsForItem(item catalog.Item, intent Intent) []string {
	base := item.DocBase()
	ids := []string{
		base + catalog.SuffixOverview,
		base + catalog.SuffixGeneralInfo,
	}
	if intent.WantsSpeed {
		ids = append(ids, base+catalog.SuffixStatSpeed)
	}
	if intent.WantsHealth {
		ids = append(ids, base+catalog.SuffixStatHealth)
	}
	return ids
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
