package engine

import (
	"fmt"
	"strings"
)

// Platform identifies the source platform of a booking row.
type Platform string

// Known platforms. PlatformAll is a sentinel meaning "applies to every
// platform unless overridden"; it is never the detected platform of a
// row that matched a keyword.
const (
	PlatformAll             Platform = "all"
	PlatformAirbnb          Platform = "airbnb"
	PlatformBooking         Platform = "booking"
	PlatformGoogle          Platform = "google"
	PlatformDirect          Platform = "direct"
	PlatformVrbo            Platform = "vrbo"
	PlatformHostaway        Platform = "hostaway"
	PlatformWeChalet        Platform = "wechalet"
	PlatformMonsieurChalets Platform = "monsieurchalets"
	PlatformDirectETransfer Platform = "direct-etransfer"
)

// Platforms lists every valid platform tag including the ALL sentinel.
var Platforms = []Platform{
	PlatformAll,
	PlatformAirbnb,
	PlatformBooking,
	PlatformGoogle,
	PlatformDirect,
	PlatformVrbo,
	PlatformHostaway,
	PlatformWeChalet,
	PlatformMonsieurChalets,
	PlatformDirectETransfer,
}

// ParsePlatform converts a string to a Platform tag.
func ParsePlatform(s string) (Platform, error) {
	candidate := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range Platforms {
		if candidate == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// IsValid reports whether p is a known platform tag.
func (p Platform) IsValid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// String returns the platform tag string.
func (p Platform) String() string {
	return string(p)
}

// platformKeyword maps a substring found in a platform cell to the
// platform it identifies.
type platformKeyword struct {
	substr   string
	platform Platform
}

// platformKeywords is the ordered classification table. Order matters:
// the first substring match wins, so the more specific entries
// (direct-etransfer before direct) come first within their family.
var platformKeywords = []platformKeyword{
	{"airbnb", PlatformAirbnb},
	{"booking", PlatformBooking},
	{"google", PlatformGoogle},
	{"vrbo", PlatformVrbo},
	{"hostaway", PlatformHostaway},
	{"wechalet", PlatformWeChalet},
	{"we chalet", PlatformWeChalet},
	{"monsieur", PlatformMonsieurChalets},
	{"chalets", PlatformMonsieurChalets},
	{"direct-etransfer", PlatformDirectETransfer},
	{"direct", PlatformDirect},
}

// platformPrefix is stripped from detected platform strings; some
// exports encode the channel as "platform:airbnb".
const platformPrefix = "platform:"

// ClassifyPlatform determines which platform bucket applies to a row.
//
// Platform detection always comes from the base (ALL) rule mapping the
// "platform" booking field; overrides apply only after the platform is
// known, so they can never participate in detection. If no platform
// rule exists, or the detected value matches no keyword, the result is
// PlatformAll.
func ClassifyPlatform(row Row, rules RuleSet, catalog *Catalog) Platform {
	rule, ok := rules.baseRule(FieldPlatform)
	if !ok {
		return PlatformAll
	}

	value := EvaluateExpression(rule.SourceExpression, row, catalog, nil)
	raw := strings.ToLower(strings.TrimSpace(value.Text()))
	raw = strings.TrimPrefix(raw, platformPrefix)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PlatformAll
	}

	for _, kw := range platformKeywords {
		if strings.Contains(raw, kw.substr) {
			return kw.platform
		}
	}
	return PlatformAll
}
