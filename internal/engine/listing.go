package engine

import "strings"

// PropertyMapping links one distinct listing name observed in the file
// to an existing or to-be-created property. Every listing starts
// unmapped; only explicit operator selection fills in a property.
type PropertyMapping struct {
	ListingName string `json:"listing_name"`

	// PropertyID is the identifier of the chosen existing property, or
	// empty when unmapped or marked for creation.
	PropertyID string `json:"property_id,omitempty"`

	// IsNewProperty marks the listing for property creation at commit.
	IsNewProperty bool `json:"is_new_property"`

	// BookingCount is the number of drafts under this listing.
	BookingCount int `json:"booking_count"`
}

// Mapped reports whether the listing has been resolved to a property
// or explicitly marked for creation.
func (m *PropertyMapping) Mapped() bool {
	return m.PropertyID != "" || m.IsNewProperty
}

// BuildPropertyMappings extracts the distinct listing names across all
// drafts with per-listing row counts, independent of platform, in
// first appearance order. Every mapping starts unmapped.
func BuildPropertyMappings(drafts []*BookingDraft) []*PropertyMapping {
	var mappings []*PropertyMapping
	index := make(map[string]*PropertyMapping)

	for _, draft := range drafts {
		key := strings.ToLower(draft.ListingName)
		mapping, ok := index[key]
		if !ok {
			mapping = &PropertyMapping{ListingName: draft.ListingName}
			index[key] = mapping
			mappings = append(mappings, mapping)
		}
		mapping.BookingCount++
	}
	return mappings
}

// PropertyMappingsValid reports whether every distinct listing has
// been assigned a property or marked for creation. This gates the
// transition from listing resolution to edit/commit.
func PropertyMappingsValid(mappings []*PropertyMapping) bool {
	for _, m := range mappings {
		if !m.Mapped() {
			return false
		}
	}
	return len(mappings) > 0
}
