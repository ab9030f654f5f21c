package engine

import (
	"fmt"
	"log/slog"
	"strings"
)

// BookingDraft is the per-row assembled booking record prior to
// commit. Drafts are immutable once produced; manual corrections go
// through the edit overlay, never through direct mutation.
type BookingDraft struct {
	// RowIndex is the zero-based index of the source row.
	RowIndex int `json:"row_index"`

	// ListingName is the derived listing_name value.
	ListingName string `json:"listing_name"`

	// Platform is the classification result for the row.
	Platform Platform `json:"platform"`

	// Fields holds the derived booking-field values.
	Fields map[string]Value `json:"fields"`
}

// Field returns a derived field value by name, case-insensitively.
func (d *BookingDraft) Field(name string) (Value, bool) {
	for k, v := range d.Fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return Value{}, false
}

// CellIssue flags one derived cell whose evaluation degraded. Issues
// are per-cell and never abort processing of other rows or fields.
type CellIssue struct {
	RowIndex     int        `json:"row_index"`
	BookingField string     `json:"booking_field"`
	Expression   string     `json:"expression"`
	Status       EvalStatus `json:"-"`
	Reason       string     `json:"reason"`
}

// ListingGroup is the set of drafts sharing one listing name, in first
// appearance order.
type ListingGroup struct {
	ListingName string         `json:"listing_name"`
	Drafts      []*BookingDraft `json:"drafts"`
}

// DerivationResult is the output of one pipeline run over a catalog.
type DerivationResult struct {
	Drafts []*BookingDraft `json:"drafts"`
	Groups []*ListingGroup `json:"groups"`
	Issues []CellIssue     `json:"issues,omitempty"`
}

// RuleSetSelector picks the rule set that applies to a row, keyed by
// the row's listing name. Global mapping mode is the degenerate case
// of one rule set shared by all listings.
type RuleSetSelector func(listingName string) RuleSet

// Deriver runs the booking derivation pipeline: classify each row's
// platform, resolve the applicable rules, evaluate direct rules then
// computed rules, and group the resulting drafts by listing.
type Deriver struct {
	logger *slog.Logger
}

// NewDeriver creates a derivation pipeline.
func NewDeriver(logger *slog.Logger) *Deriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deriver{logger: logger}
}

// DeriveBookingDrafts runs the pipeline in global mapping mode: one
// rule set for every row. Returns a mapping error (and no result) when
// the set is structurally invalid or misses a required field.
func (d *Deriver) DeriveBookingDrafts(catalog *Catalog, rules RuleSet) (*DerivationResult, error) {
	return d.Derive(catalog, rules, nil)
}

// Derive runs the pipeline with an optional per-listing selector for
// per-property mapping mode. The base set drives listing detection;
// when selector returns a non-nil set for a row's listing, the full
// pipeline reruns with that set, including platform classification, so
// a property set's own platform rule and overrides take effect.
func (d *Deriver) Derive(catalog *Catalog, base RuleSet, selector RuleSetSelector) (*DerivationResult, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule set: %w", err)
	}
	if missing := base.MissingRequiredFields(); len(missing) > 0 {
		return nil, fmt.Errorf("rule set is missing required booking fields: %s", strings.Join(missing, ", "))
	}

	result := &DerivationResult{}
	groupIndex := make(map[string]*ListingGroup)
	resolvedCache := make(map[Platform]ResolvedMapping)

	for rowIndex, row := range catalog.Rows {
		platform := ClassifyPlatform(row, base, catalog)

		rules := base
		if selector != nil {
			listingName := d.detectListing(row, catalog, base, platform, resolvedCache)
			if propertySet := selector(listingName); propertySet != nil {
				if err := propertySet.Validate(); err != nil {
					return nil, fmt.Errorf("invalid rule set for listing %q: %w", listingName, err)
				}
				rules = propertySet
				platform = ClassifyPlatform(row, rules, catalog)
			}
		}

		var resolved ResolvedMapping
		if selector == nil {
			// Global mode: cache per distinct platform.
			cached, ok := resolvedCache[platform]
			if !ok {
				cached = ResolveMapping(base, platform)
				resolvedCache[platform] = cached
			}
			resolved = cached
		} else {
			resolved = ResolveMapping(rules, platform)
		}

		draft, issues := d.deriveRow(rowIndex, row, catalog, resolved, platform)
		result.Drafts = append(result.Drafts, draft)
		result.Issues = append(result.Issues, issues...)

		group, ok := groupIndex[strings.ToLower(draft.ListingName)]
		if !ok {
			group = &ListingGroup{ListingName: draft.ListingName}
			groupIndex[strings.ToLower(draft.ListingName)] = group
			result.Groups = append(result.Groups, group)
		}
		group.Drafts = append(group.Drafts, draft)
	}

	if len(result.Issues) > 0 {
		d.logger.Warn("derivation completed with flagged cells",
			slog.Int("rows", len(result.Drafts)),
			slog.Int("flagged_cells", len(result.Issues)),
		)
	}
	return result, nil
}

// detectListing evaluates the listing_name mapping for a row using the
// base set, so per-property selection has a listing to key on.
func (d *Deriver) detectListing(row Row, catalog *Catalog, base RuleSet, platform Platform, cache map[Platform]ResolvedMapping) string {
	resolved, ok := cache[platform]
	if !ok {
		resolved = ResolveMapping(base, platform)
		cache[platform] = resolved
	}
	rule, ok := resolved.Rule(FieldListingName)
	if !ok {
		return ""
	}
	value := EvaluateExpression(rule.SourceExpression, row, catalog, nil)
	return strings.TrimSpace(value.Text())
}

// deriveRow evaluates one resolved mapping against one row.
//
// Rules are partitioned into direct column references and computed
// formulas, then evaluated in two passes: all direct rules first, in
// their original relative order, then all computed rules, also in
// order. A computed rule sees every direct result plus any computed
// result written earlier in the pass. This single forward pass is the
// pipeline's ordering contract: a computed rule may not depend on a
// computed rule defined later in the resolved list.
func (d *Deriver) deriveRow(rowIndex int, row Row, catalog *Catalog, resolved ResolvedMapping, platform Platform) (*BookingDraft, []CellIssue) {
	var direct, computed []Rule
	for _, rule := range resolved {
		if catalog.ColumnIndex(strings.TrimSpace(rule.SourceExpression)) >= 0 {
			direct = append(direct, rule)
		} else {
			computed = append(computed, rule)
		}
	}

	derived := make(map[string]Value, len(resolved))
	var issues []CellIssue

	evalRule := func(rule Rule) {
		value, status := EvaluateExpressionStatus(rule.SourceExpression, row, catalog, derived)
		derived[rule.BookingField] = value
		if status != EvalOK {
			issues = append(issues, CellIssue{
				RowIndex:     rowIndex,
				BookingField: rule.BookingField,
				Expression:   rule.SourceExpression,
				Status:       status,
				Reason:       status.String(),
			})
		}
	}

	for _, rule := range direct {
		evalRule(rule)
	}
	for _, rule := range computed {
		evalRule(rule)
	}

	draft := &BookingDraft{
		RowIndex: rowIndex,
		Platform: platform,
		Fields:   derived,
	}
	if listing, ok := draft.Field(FieldListingName); ok {
		draft.ListingName = strings.TrimSpace(listing.Text())
	}
	return draft, issues
}
