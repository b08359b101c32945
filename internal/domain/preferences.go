package domain

import "strings"

// Preferences is a user's dietary preference set. All three lists are
// normalized to lowercase trimmed non-empty strings before filtering.
type Preferences struct {
	DietType  []string
	Allergies []string
	Dislikes  []string
}

// Normalized returns a copy with every entry trimmed, lowercased, and
// blank entries dropped.
func (p Preferences) Normalized() Preferences {
	return Preferences{
		DietType:  sanitizeTags(p.DietType),
		Allergies: sanitizeTags(p.Allergies),
		Dislikes:  sanitizeTags(p.Dislikes),
	}
}

// IsEmpty reports whether no preference constrains results.
func (p Preferences) IsEmpty() bool {
	return len(p.DietType) == 0 && len(p.Allergies) == 0 && len(p.Dislikes) == 0
}

func sanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
