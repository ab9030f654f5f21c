package engine

import "strings"

// Canonical booking-field names produced by mapping rules.
const (
	FieldReservationCode = "reservation_code"
	FieldGuestName       = "guest_name"
	FieldCheckInDate     = "check_in_date"
	FieldNumNights       = "num_nights"
	FieldPlatform        = "platform"
	FieldListingName     = "listing_name"
)

// RequiredFields are the booking fields that must have a mapping before
// a rule set is allowed to drive a commit.
var RequiredFields = []string{
	FieldReservationCode,
	FieldGuestName,
	FieldCheckInDate,
	FieldNumNights,
	FieldPlatform,
	FieldListingName,
}

// FinancialFields are the booking fields eligible for manual correction
// through the edit overlay.
var FinancialFields = []string{
	"nightly_rate",
	"cleaning_fee",
	"total_payout",
	"net_earnings",
	"sales_tax",
	"mgmt_fee",
	"extra_guest_fees",
	"lodging_tax",
	"qst",
	"gst",
	"channel_fee",
	"stripe_fee",
	"bed_linen_fee",
}

// IsFinancialField reports whether a booking field is on the manual
// edit allow-list.
func IsFinancialField(name string) bool {
	for _, f := range FinancialFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Rule maps one canonical booking field to a source expression, scoped
// to a platform bucket.
//
// A rule with Platform == PlatformAll is a base rule and must not be an
// override. A rule with a specific platform and IsOverride == true
// replaces the base rule for the same booking field, but only for rows
// classified to that platform.
type Rule struct {
	BookingField     string   `json:"booking_field"`
	SourceExpression string   `json:"source_expression"`
	Platform         Platform `json:"platform"`
	IsOverride       bool     `json:"is_override"`
}

// blank reports whether the rule carries no usable expression. Blank
// rules are excluded from resolution entirely: a field with no mapping
// is simply absent from the output, not an error.
func (r Rule) blank() bool {
	return strings.TrimSpace(r.SourceExpression) == ""
}

// RuleSet is the full rule collection for one property (or one global
// configuration), logically partitioned by platform.
type RuleSet []Rule

// baseRule returns the base-bucket (ALL) rule for a booking field.
func (s RuleSet) baseRule(field string) (Rule, bool) {
	for _, r := range s {
		if r.Platform == PlatformAll && !r.blank() && strings.EqualFold(r.BookingField, field) {
			return r, true
		}
	}
	return Rule{}, false
}

// ResolvedMapping is an ordered rule list with at most one rule per
// booking field, computed for one detected platform.
type ResolvedMapping []Rule

// Rule returns the resolved rule for a booking field, if any.
func (m ResolvedMapping) Rule(field string) (Rule, bool) {
	for _, r := range m {
		if strings.EqualFold(r.BookingField, field) {
			return r, true
		}
	}
	return Rule{}, false
}

// Fields returns the booking fields covered by the mapping, in order.
func (m ResolvedMapping) Fields() []string {
	fields := make([]string, 0, len(m))
	for _, r := range m {
		fields = append(fields, r.BookingField)
	}
	return fields
}

// ResolveMapping merges the base bucket with the override bucket for
// the detected platform into one ordered, deduplicated rule list.
//
// Every non-blank base (ALL) rule seeds the mapping in its original
// order. Then every override for the detected platform replaces the
// entry for its booking field in place, or appends a new entry when
// the base bucket had none. A platform-specific override always wins
// over ALL for the same field; among duplicate (field, platform)
// pairs the last write wins, mirroring how the store resolves them.
//
// Resolution is deterministic: the same (ruleSet, platform) input
// always yields a structurally identical mapping.
func ResolveMapping(rules RuleSet, platform Platform) ResolvedMapping {
	resolved := make(ResolvedMapping, 0, len(rules))
	position := make(map[string]int, len(rules))

	for _, r := range rules {
		if r.Platform != PlatformAll || r.blank() {
			continue
		}
		key := strings.ToLower(r.BookingField)
		if idx, seen := position[key]; seen {
			resolved[idx] = r
			continue
		}
		position[key] = len(resolved)
		resolved = append(resolved, r)
	}

	if platform == PlatformAll {
		return resolved
	}

	for _, r := range rules {
		if r.Platform != platform || !r.IsOverride || r.blank() {
			continue
		}
		key := strings.ToLower(r.BookingField)
		if idx, seen := position[key]; seen {
			resolved[idx] = r
			continue
		}
		position[key] = len(resolved)
		resolved = append(resolved, r)
	}

	return resolved
}

// MissingRequiredFields returns the required booking fields that have
// no non-blank base or override mapping anywhere in the set. A missing
// required field is a mapping error and blocks preview.
func (s RuleSet) MissingRequiredFields() []string {
	var missing []string
	for _, field := range RequiredFields {
		found := false
		for _, r := range s {
			if !r.blank() && strings.EqualFold(r.BookingField, field) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate checks the structural invariants of the rule set: base
// rules must not be flagged as overrides, platform tags must be known,
// and booking fields must be named.
func (s RuleSet) Validate() error {
	for _, r := range s {
		if strings.TrimSpace(r.BookingField) == "" {
			return ErrRuleFieldRequired
		}
		if !r.Platform.IsValid() {
			return ErrRuleUnknownPlatform
		}
		if r.Platform == PlatformAll && r.IsOverride {
			return ErrRuleBaseOverride
		}
	}
	return nil
}
