package dictionary

import (
	"encoding/json"
	"fmt"
)

// MatchType tells how a suggestion was derived. The zero value is Exact.
// Partial matches are reserved for fuzzy lookups.
type MatchType struct {
	partial bool
	percent uint32
}

// Exact marks a suggestion stored for exactly the requested text.
var Exact = MatchType{}

// PartialPercent marks a fuzzy match with the given similarity.
func PartialPercent(percent uint32) MatchType {
	return MatchType{partial: true, percent: percent}
}

// IsExact reports whether m is Exact.
func (m MatchType) IsExact() bool { return !m.partial }

// Percent returns the similarity of a partial match.
func (m MatchType) Percent() (uint32, bool) { return m.percent, m.partial }

func (m MatchType) String() string {
	if !m.partial {
		return "exact"
	}
	return fmt.Sprintf("partial %d%%", m.percent)
}

type matchTypeJSON struct {
	Kind    string  `json:"kind"`
	Percent *uint32 `json:"percent,omitempty"`
}

func (m MatchType) MarshalJSON() ([]byte, error) {
	if !m.partial {
		return json.Marshal(matchTypeJSON{Kind: "exact"})
	}
	p := m.percent
	return json.Marshal(matchTypeJSON{Kind: "partial", Percent: &p})
}

func (m *MatchType) UnmarshalJSON(b []byte) error {
	var raw matchTypeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "exact":
		*m = Exact
	case "partial":
		if raw.Percent == nil {
			return fmt.Errorf("match type: partial without percent")
		}
		*m = PartialPercent(*raw.Percent)
	default:
		return fmt.Errorf("match type: unknown kind %q", raw.Kind)
	}
	return nil
}

// Suggestion is one candidate translation offered for a source text.
type Suggestion struct {
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	MatchType      MatchType `json:"match_type"`
}

// MachineSuggestion wraps a translation produced outside the dictionary, for
// example by a translation API, in the same shape as dictionary hits.
func MachineSuggestion(original, translated string) Suggestion {
	return Suggestion{OriginalText: original, TranslatedText: translated, MatchType: Exact}
}

func exactSuggestions(original string, t Translation) []Suggestion {
	out := make([]Suggestion, 0, len(t))
	for _, translated := range t {
		out = append(out, Suggestion{OriginalText: original, TranslatedText: translated, MatchType: Exact})
	}
	return out
}

// mergeUnique concatenates groups in order, keeping the first suggestion
// for every translated text.
func mergeUnique(groups [][]Suggestion) []Suggestion {
	seen := make(map[string]struct{})
	out := make([]Suggestion, 0)
	for _, group := range groups {
		for _, s := range group {
			if _, dup := seen[s.TranslatedText]; dup {
				continue
			}
			seen[s.TranslatedText] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
