package oracle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wing9900/war-tycoon-oracle-bot/catalog"
)

const (
	placeholderNA  = "N/A"
	placeholderTBA = "[TBA]"

	sourceTextDivider = "--- Source Text ---"
)

type templateKey struct {
	entityType string
	infoType   string
}

type renderFunc func(meta map[string]any) []string

// detailRenderers selects the per-category detail block. Unknown
// (entity_type, info_type) pairs fall through to header plus source text
// so new item categories degrade instead of crashing.
var detailRenderers = map[templateKey]renderFunc{
	{catalog.EntityAircraft, "general_info"}:         renderGeneralInfo,
	{catalog.EntityAircraft, "stat_speed"}:           renderTieredStat,
	{catalog.EntityAircraft, "stat_health"}:          renderTieredStat,
	{catalog.EntityAircraft, "stat_firepower"}:       renderFirepower,
	{catalog.EntityAircraft, "armament_description"}: renderArmament,
	{catalog.EntityAircraft, "history"}:              renderHistory,
	{catalog.EntityAircraft, "overview_concise"}:     renderOverview,
	{catalog.EntityAircraft, "category_membership"}:  renderCategory,
}

// FormatContext renders the ranked record list into the context string
// passed to the model. Pure and deterministic: no network, no state.
func FormatContext(records []ContextRecord) string {
	if len(records) == 0 {
		return "No wiki records were retrieved for this question."
	}

	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		blocks = append(blocks, formatRecord(rec))
	}
	return strings.Join(blocks, "\n\n")
}

func formatRecord(rec ContextRecord) string {
	lines := []string{
		"Record: " + rec.ID,
		"Relevance: " + relevanceLabel(rec),
		"Item: " + orPlaceholder(rec.ItemName, placeholderNA),
		"Entity Type: " + orPlaceholder(rec.EntityType, placeholderNA),
		"Info Type: " + orPlaceholder(rec.InfoType, placeholderNA),
	}

	if rec.ID == catalog.SummaryRecordID {
		lines = append(lines, renderSummary(rec.Metadata)...)
	} else if render, ok := detailRenderers[templateKey{rec.EntityType, rec.InfoType}]; ok {
		lines = append(lines, render(rec.Metadata)...)
	}

	if rec.SourceText != "" {
		lines = append(lines, sourceTextDivider, rec.SourceText)
	}
	return strings.Join(lines, "\n")
}

func relevanceLabel(rec ContextRecord) string {
	if rec.Direct {
		return "directly fetched"
	}
	return strconv.FormatFloat(rec.Score, 'f', 4, 64)
}

func renderGeneralInfo(meta map[string]any) []string {
	return []string{
		"Price / Unlock Method: " + stringField(meta, "price", placeholderNA),
		"Unlock Details: " + stringField(meta, "unlock_details", placeholderNA),
		"Seating Capacity: " + stringField(meta, "seating", placeholderNA),
		"Armaments: " + stringField(meta, "armaments", placeholderNA),
		"Utilities: " + stringField(meta, "utilities", placeholderNA),
		"Hull Components: " + stringField(meta, "hull_components", placeholderNA),
		"Engine Components: " + stringField(meta, "engine_components", placeholderNA),
		"Spawn Cost (Parts): " + stringField(meta, "spawn_cost_parts", placeholderNA),
		"Speed Range: " + stringField(meta, "speed_range", placeholderNA),
		"Health Range: " + stringField(meta, "health_range", placeholderNA),
	}
}

func renderTieredStat(meta map[string]any) []string {
	lines := []string{"Unit: " + stringField(meta, "unit", placeholderNA)}
	return append(lines, renderTiers(meta)...)
}

func renderFirepower(meta map[string]any) []string {
	lines := []string{
		"Weapon: " + stringField(meta, "weapon_name", placeholderNA),
		"Unit: " + stringField(meta, "unit", placeholderNA),
	}
	return append(lines, renderTiers(meta)...)
}

// renderTiers emits the four-tier breakdown. Absent tiers render as
// placeholders so the model never infers missing data from absence.
func renderTiers(meta map[string]any) []string {
	tiers := []struct {
		label string
		key   string
	}{
		{"Non-Upgraded", "non_upgraded"},
		{"Tier 1", "tier_1"},
		{"Tier 2", "tier_2"},
		{"Tier 3", "tier_3"},
	}

	lines := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		display := stringField(meta, tier.key+"_display", placeholderTBA)
		value := stringField(meta, tier.key+"_value", placeholderTBA)
		lines = append(lines, fmt.Sprintf("%s: %s (value: %s)", tier.label, display, value))
	}
	return lines
}

func renderArmament(meta map[string]any) []string {
	return []string{
		"Weapon: " + stringField(meta, "weapon_name", placeholderNA),
		"Count: " + stringField(meta, "count", placeholderNA),
		"Weapon Type: " + stringField(meta, "weapon_type", placeholderNA),
		"Characteristics: " + listField(meta, "characteristics", placeholderNA),
		"Notes: " + stringField(meta, "notes", placeholderNA),
	}
}

func renderHistory(meta map[string]any) []string {
	return []string{
		"Section: " + stringField(meta, "section_title", placeholderNA),
		"Key Periods: " + listField(meta, "key_periods", placeholderNA),
	}
}

func renderOverview(meta map[string]any) []string {
	return []string{
		"Role: " + stringField(meta, "role", placeholderNA),
		"Strengths: " + listField(meta, "strengths", placeholderNA),
		"Weaknesses: " + listField(meta, "weaknesses", placeholderNA),
		"Utility: " + stringField(meta, "utility_summary", placeholderNA),
	}
}

func renderCategory(meta map[string]any) []string {
	return []string{"Category: " + stringField(meta, "category", placeholderNA)}
}

// renderSummary iterates the embedded per-item list of the well-known
// summary record.
func renderSummary(meta map[string]any) []string {
	raw, ok := meta["items"].([]any)
	if !ok || len(raw) == 0 {
		return []string{"Items: " + placeholderNA}
	}

	lines := make([]string, 0, len(raw)+1)
	lines = append(lines, "All aircraft:")
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s | Price/Unlock: %s | Seats: %s | Armaments: %s | Speed: %s | Health: %s",
			stringField(item, "name", placeholderNA),
			stringField(item, "price", placeholderNA),
			stringField(item, "seating", placeholderNA),
			stringField(item, "armaments", placeholderNA),
			stringField(item, "speed_range", placeholderNA),
			stringField(item, "health_range", placeholderNA),
		))
	}
	return lines
}

// stringField reads a metadata field as display text, falling back to
// the placeholder when the key is absent, empty, or an unexpected shape.
func stringField(meta map[string]any, key, placeholder string) string {
	value, ok := meta[key]
	if !ok {
		return placeholder
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return placeholder
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return placeholder
	}
}

// listField joins a string-list field with commas.
func listField(meta map[string]any, key, placeholder string) string {
	value, ok := meta[key]
	if !ok {
		return placeholder
	}

	var parts []string
	switch v := value.(type) {
	case []string:
		parts = v
	case []any:
		for _, entry := range v {
			if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			parts = []string{v}
		}
	}

	if len(parts) == 0 {
		return placeholder
	}
	return strings.Join(parts, ", ")
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
