// Package catalog holds the known-item registry used to recover an item
// reference when semantic search alone does not surface one.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EntityAircraft = "aircraft"

	// SummaryRecordID is the well-known record holding per-item summaries
	// for "list all" style questions.
	SummaryRecordID = "all_aircraft_summary"

	SuffixOverview    = "_overview_full_text"
	SuffixGeneralInfo = "_general_info"
	SuffixStatSpeed   = "_stat_speed"
	SuffixStatHealth  = "_stat_health"
)

// Item is one registered game item. DocID, when set, overrides the id
// derived from the name so renames never desync the document set.
type Item struct {
	Name       string   `yaml:"name"`
	EntityType string   `yaml:"entity_type"`
	Aliases    []string `yaml:"aliases"`
	DocID      string   `yaml:"doc_id"`
}

// MentionedIn reports whether the item's name or any alias appears in
// the text, case-insensitive.
func (i Item) MentionedIn(text string) bool {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, strings.ToLower(i.Name)) {
		return true
	}
	for _, alias := range i.Aliases {
		if alias != "" && strings.Contains(lowered, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

// DocBase returns the base document id for the item.
func (i Item) DocBase() string {
	if i.DocID != "" {
		return i.DocID
	}
	return NormalizeID(i.Name)
}

type Catalog struct {
	items []Item
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// Load reads a YAML registry file. Items without an entity type default
// to aircraft.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("catalog %s contains no items", path)
	}

	for idx := range file.Items {
		if strings.TrimSpace(file.Items[idx].Name) == "" {
			return nil, fmt.Errorf("catalog %s: item %d has no name", path, idx)
		}
		if file.Items[idx].EntityType == "" {
			file.Items[idx].EntityType = EntityAircraft
		}
	}

	return New(file.Items), nil
}

func New(items []Item) *Catalog {
	return &Catalog{items: items}
}

// Default returns the compiled-in aircraft registry.
func Default() *Catalog {
	return New([]Item{
		{Name: "P-51 Mustang", EntityType: EntityAircraft, Aliases: []string{"p-51", "p51", "mustang"}},
		{Name: "Spitfire", EntityType: EntityAircraft, Aliases: []string{"supermarine spitfire"}},
		{Name: "F4U Corsair", EntityType: EntityAircraft, Aliases: []string{"f4u", "corsair"}},
		{Name: "A-10 Warthog", EntityType: EntityAircraft, Aliases: []string{"a-10", "a10", "warthog", "thunderbolt ii"}},
		{Name: "AC-130", EntityType: EntityAircraft, Aliases: []string{"ac130", "ac 130"}},
		{Name: "B-2 Spirit", EntityType: EntityAircraft, Aliases: []string{"b-2", "b2", "stealth bomber"}},
	})
}

func (c *Catalog) Items() []Item {
	return c.items
}

// MatchText scans free text for any item name or alias, case-insensitive.
// Longer aliases are tried first so "supermarine spitfire" wins over
// "spitfire" before either matches.
func (c *Catalog) MatchText(text string) (Item, bool) {
	lowered := strings.ToLower(text)

	type candidate struct {
		alias string
		item  Item
	}
	candidates := make([]candidate, 0, len(c.items)*3)
	for _, item := range c.items {
		candidates = append(candidates, candidate{alias: strings.ToLower(item.Name), item: item})
		for _, alias := range item.Aliases {
			candidates = append(candidates, candidate{alias: strings.ToLower(alias), item: item})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].alias) > len(candidates[j].alias)
	})

	for _, cand := range candidates {
		if cand.alias != "" && strings.Contains(lowered, cand.alias) {
			return cand.item, true
		}
	}
	return Item{}, false
}

// MatchName resolves an exact item name (as carried in record metadata)
// to a catalog entry, tolerating case and alias spellings.
func (c *Catalog) MatchName(name string) (Item, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Item{}, false
	}
	for _, item := range c.items {
		if strings.ToLower(item.Name) == normalized {
			return item, true
		}
		for _, alias := range item.Aliases {
			if strings.ToLower(alias) == normalized {
				return item, true
			}
		}
	}
	return Item{}, false
}

// NormalizeID lowercases a name and collapses every run of
// non-alphanumeric characters to a single underscore.
func NormalizeID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
