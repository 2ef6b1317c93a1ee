package reference

import "strings"

// Author represents a record author.
type Author struct {
	First string `json:"first"`           // First/given name(s)
	Last  string `json:"last"`            // Last/family name
	ORCID string `json:"orcid,omitempty"` // ORCID identifier (without URL prefix)
}

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// SplitName splits a full name into first and last name.
// Handles common suffixes (Jr, Sr, II, III, IV, PhD, MD).
//
// Known limitations:
// - Multi-part surnames (von Neumann, van der Waals) split incorrectly
// - Non-Western name formats may not be handled correctly
// - Middle names are included in the first name
func SplitName(name string) Author {
	name = strings.TrimSpace(name)
	if name == "" {
		return Author{}
	}

	// "Last, First" form
	if idx := strings.Index(name, ","); idx >= 0 {
		return Author{
			Last:  strings.TrimSpace(name[:idx]),
			First: strings.TrimSpace(name[idx+1:]),
		}
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		// Single name (e.g., "Madonna")
		return Author{Last: parts[0]}
	}

	// Check if the last part is a suffix
	lastPart := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[lastPart] && len(parts) > 2 {
		// Keep suffix with last name
		return Author{
			Last:  parts[len(parts)-2] + " " + parts[len(parts)-1],
			First: strings.Join(parts[:len(parts)-2], " "),
		}
	}

	return Author{
		Last:  parts[len(parts)-1],
		First: strings.Join(parts[:len(parts)-1], " "),
	}
}
