package types

import (
	"encoding/json"
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"
)

// RouteHighlight is a short descriptive tag shown on a route card. The
// generation backend may send either `{label, icon}` objects or bare strings;
// UnmarshalJSON repairs the bare-string form into the canonical shape so the
// rest of the code can assume a single representation.
type RouteHighlight struct {
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

func (h *RouteHighlight) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		h.Label = label
		h.Icon = ""
		return nil
	}

	type plain RouteHighlight
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*h = RouteHighlight(obj)
	return nil
}

// DefaultHighlightIcon is used when no keyword from the table matches.
const DefaultHighlightIcon = "📍"

// Aho-Corasick matcher for highlight icon assignment. Case-insensitive
// substring match against a fixed keyword table, leftmost match wins.
var (
	highlightIconBuilder = a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            a.LeftMostLongestMatch,
	})

	highlightIconKeywords = []string{
		"museum", "history", "historic", "culture", "art", "gallery",
		"food", "cuisine", "restaurant", "wine", "coffee",
		"beach", "coast", "island",
		"nature", "park", "garden", "hik", "mountain", "lake",
		"shopping", "market", "nightlife",
		"family", "romantic", "photo",
		"architecture", "castle", "church", "temple", "cathedral",
		"music", "festival", "adventure", "relax", "spa",
	}

	highlightIconMatcher = highlightIconBuilder.Build(highlightIconKeywords)

	keywordToIcon = map[string]string{
		"museum": "🏛️", "history": "🏛️", "historic": "🏛️",
		"culture": "🎭", "art": "🎨", "gallery": "🎨",
		"food": "🍜", "cuisine": "🍜", "restaurant": "🍽️",
		"wine": "🍷", "coffee": "☕",
		"beach": "🏖️", "coast": "🏖️", "island": "🏝️",
		"nature": "🌿", "park": "🌳", "garden": "🌷",
		"hik": "🥾", "mountain": "⛰️", "lake": "🏞️",
		"shopping": "🛍️", "market": "🧺", "nightlife": "🌃",
		"family": "👨‍👩‍👧", "romantic": "💑", "photo": "📷",
		"architecture": "🏰", "castle": "🏰",
		"church": "⛪", "temple": "🛕", "cathedral": "⛪",
		"music": "🎵", "festival": "🎉", "adventure": "🧗",
		"relax": "🧘", "spa": "🧖",
	}
)

// IconForHighlight resolves the icon for a highlight label via the keyword
// table. Returns DefaultHighlightIcon when nothing matches.
func IconForHighlight(label string) string {
	lowered := strings.ToLower(label)
	iter := highlightIconMatcher.Iter(lowered)
	if match := iter.Next(); match != nil {
		if icon, ok := keywordToIcon[lowered[match.Start():match.End()]]; ok {
			return icon
		}
	}
	return DefaultHighlightIcon
}

// NormalizeHighlights returns the canonical form of a highlight list: entries
// with empty labels are dropped, and entries without an icon get one from the
// keyword table. Applying it twice yields the same result.
func NormalizeHighlights(highlights []RouteHighlight) []RouteHighlight {
	normalized := make([]RouteHighlight, 0, len(highlights))
	for _, h := range highlights {
		h.Label = strings.TrimSpace(h.Label)
		if h.Label == "" {
			continue
		}
		if h.Icon == "" {
			h.Icon = IconForHighlight(h.Label)
		}
		normalized = append(normalized, h)
	}
	return normalized
}
