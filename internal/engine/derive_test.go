package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullRuleSet covers every required booking field against the columns
// used throughout the derivation tests.
func fullRuleSet(extra ...Rule) RuleSet {
	rules := RuleSet{
		{BookingField: "reservation_code", SourceExpression: "Code", Platform: PlatformAll},
		{BookingField: "guest_name", SourceExpression: "Guest", Platform: PlatformAll},
		{BookingField: "check_in_date", SourceExpression: "Arrival Date", Platform: PlatformAll},
		{BookingField: "num_nights", SourceExpression: "Nights", Platform: PlatformAll},
		{BookingField: "platform", SourceExpression: "Channel", Platform: PlatformAll},
		{BookingField: "listing_name", SourceExpression: "Listing", Platform: PlatformAll},
	}
	return append(rules, extra...)
}

func derivationCatalog(rows ...Row) *Catalog {
	return testCatalog(
		[]string{"Code", "Guest", "Arrival Date", "Nights", "Channel", "Listing", "Rate", "Revenue"},
		rows...,
	)
}

func TestDeriver_PlatformOverrideApplied(t *testing.T) {
	rules := fullRuleSet(
		Rule{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		Rule{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: PlatformAirbnb, IsOverride: true},
	)
	catalog := derivationCatalog(
		Row{"HMABC123", "Jane Mercer", "2024-03-15", "3", "Airbnb", "Lake House", "100", "300"},
		Row{"VB-9911", "Omar Reyes", "2024-04-02", "2", "VRBO", "Lake House", "100", "200"},
	)

	result, err := NewDeriver(nil).DeriveBookingDrafts(catalog, rules)
	require.NoError(t, err)
	require.Len(t, result.Drafts, 2)

	airbnb := result.Drafts[0]
	assert.Equal(t, PlatformAirbnb, airbnb.Platform)
	rate, ok := airbnb.Field("nightly_rate")
	require.True(t, ok)
	assert.InDelta(t, 97.0, rate.Number(), 0.001)

	vrbo := result.Drafts[1]
	assert.Equal(t, PlatformVrbo, vrbo.Platform)
	rate, ok = vrbo.Field("nightly_rate")
	require.True(t, ok)
	assert.InDelta(t, 100.0, rate.Number(), 0.001)
}

func TestDeriver_DirectBeforeComputed(t *testing.T) {
	// net_earnings references two fields derived on the same row; the
	// two-phase pass guarantees both are present before it evaluates.
	rules := fullRuleSet(
		Rule{BookingField: "total_payout", SourceExpression: "Revenue", Platform: PlatformAll},
		Rule{BookingField: "mgmt_fee", SourceExpression: "Revenue*0.1", Platform: PlatformAll},
		Rule{BookingField: "net_earnings", SourceExpression: "total_payout - mgmt_fee", Platform: PlatformAll},
	)
	catalog := derivationCatalog(
		Row{"HMABC123", "Jane Mercer", "2024-03-15", "3", "Airbnb", "Lake House", "100", "200"},
	)

	result, err := NewDeriver(nil).DeriveBookingDrafts(catalog, rules)
	require.NoError(t, err)
	require.Len(t, result.Drafts, 1)
	assert.Empty(t, result.Issues)

	draft := result.Drafts[0]
	payout, _ := draft.Field("total_payout")
	fee, _ := draft.Field("mgmt_fee")
	net, _ := draft.Field("net_earnings")
	assert.InDelta(t, 200.0, payout.Number(), 0.001)
	assert.InDelta(t, 20.0, fee.Number(), 0.001)
	assert.InDelta(t, 180.0, net.Number(), 0.001)
}

func TestDeriver_ComputedOrderContract(t *testing.T) {
	// A computed rule referencing a computed rule defined later sees an
	// unresolved name: the single forward pass does not auto-resolve
	// dependencies, so the cell degrades to unevaluated.
	rules := fullRuleSet(
		Rule{BookingField: "net_earnings", SourceExpression: "total_payout - mgmt_fee", Platform: PlatformAll},
		Rule{BookingField: "mgmt_fee", SourceExpression: "Revenue*0.1", Platform: PlatformAll},
	)
	catalog := derivationCatalog(
		Row{"HMABC123", "Jane Mercer", "2024-03-15", "3", "Airbnb", "Lake House", "100", "200"},
	)

	result, err := NewDeriver(nil).DeriveBookingDrafts(catalog, rules)
	require.NoError(t, err)

	net, _ := result.Drafts[0].Field("net_earnings")
	assert.False(t, net.IsNumber())
	assert.Equal(t, "total_payout - mgmt_fee", net.Text())

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "net_earnings", result.Issues[0].BookingField)
	assert.Equal(t, EvalUnevaluated, result.Issues[0].Status)
}

func TestDeriver_MalformedFormulaFlagged(t *testing.T) {
	rules := fullRuleSet(
		Rule{BookingField: "nightly_rate", SourceExpression: "Rate*", Platform: PlatformAll},
	)
	catalog := derivationCatalog(
		Row{"HMABC123", "Jane Mercer", "2024-03-15", "3", "Airbnb", "Lake House", "50", "200"},
	)

	result, err := NewDeriver(nil).DeriveBookingDrafts(catalog, rules)
	require.NoError(t, err)

	rate, _ := result.Drafts[0].Field("nightly_rate")
	require.True(t, rate.IsNumber())
	assert.Zero(t, rate.Number())

	require.Len(t, result.Issues, 1)
	assert.Equal(t, EvalNumericError, result.Issues[0].Status)
	assert.Equal(t, 0, result.Issues[0].RowIndex)
	assert.Equal(t, "nightly_rate", result.Issues[0].BookingField)
}

func TestDeriver_GroupsByListing(t *testing.T) {
	rules := fullRuleSet()
	rows := make([]Row, 0, 8)
	for i := 0; i < 5; i++ {
		rows = append(rows, Row{"LH-" + string(rune('A'+i)), "Guest", "2024-03-15", "2", "Airbnb", "Lake House", "100", "200"})
	}
	for i := 0; i < 3; i++ {
		rows = append(rows, Row{"CM-" + string(rune('A'+i)), "Guest", "2024-03-15", "2", "VRBO", "Casa Madera", "100", "200"})
	}
	catalog := derivationCatalog(rows...)

	result, err := NewDeriver(nil).DeriveBookingDrafts(catalog, rules)
	require.NoError(t, err)
	assert.Len(t, result.Drafts, 8)

	require.Len(t, result.Groups, 2)
	assert.Equal(t, "Lake House", result.Groups[0].ListingName)
	assert.Len(t, result.Groups[0].Drafts, 5)
	assert.Equal(t, "Casa Madera", result.Groups[1].ListingName)
	assert.Len(t, result.Groups[1].Drafts, 3)
}

func TestDeriver_DatePreservedThroughPipeline(t *testing.T) {
	rules := fullRuleSet()
	catalog := derivationCatalog(
		Row{"HMABC123", "Jane Mercer", "2024-03-15", "3", "Airbnb", "Lake House", "100", "200"},
	)

	result, err := NewDeriver(nil).DeriveBookingDrafts(catalog, rules)
	require.NoError(t, err)

	checkIn, ok := result.Drafts[0].Field("check_in_date")
	require.True(t, ok)
	assert.False(t, checkIn.IsNumber())
	assert.Equal(t, "2024-03-15", checkIn.Text())
}

func TestDeriver_MappingErrorsBlockDerivation(t *testing.T) {
	catalog := derivationCatalog(
		Row{"HMABC123", "Jane Mercer", "2024-03-15", "3", "Airbnb", "Lake House", "100", "200"},
	)

	// Missing required fields.
	_, err := NewDeriver(nil).DeriveBookingDrafts(catalog, RuleSet{
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required booking fields")

	// Structurally invalid set.
	bad := fullRuleSet(Rule{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll, IsOverride: true})
	_, err = NewDeriver(nil).DeriveBookingDrafts(catalog, bad)
	assert.ErrorIs(t, err, ErrRuleBaseOverride)
}

func TestDeriver_PerPropertyMode(t *testing.T) {
	base := fullRuleSet(
		Rule{BookingField: "cleaning_fee", SourceExpression: "Rate*0.2", Platform: PlatformAll},
	)
	lakeHouse := fullRuleSet(
		Rule{BookingField: "cleaning_fee", SourceExpression: "Rate*0.5", Platform: PlatformAll},
	)
	catalog := derivationCatalog(
		Row{"LH-1", "Jane", "2024-03-15", "3", "Airbnb", "Lake House", "100", "300"},
		Row{"CM-1", "Omar", "2024-03-16", "2", "Airbnb", "Casa Madera", "100", "200"},
	)

	selector := func(listing string) RuleSet {
		if listing == "Lake House" {
			return lakeHouse
		}
		return nil // fall back to the base set
	}

	result, err := NewDeriver(nil).Derive(catalog, base, selector)
	require.NoError(t, err)
	require.Len(t, result.Drafts, 2)

	fee, _ := result.Drafts[0].Field("cleaning_fee")
	assert.InDelta(t, 50.0, fee.Number(), 0.001)

	fee, _ = result.Drafts[1].Field("cleaning_fee")
	assert.InDelta(t, 20.0, fee.Number(), 0.001)
}

func TestDeriver_PropertySetReclassifiesPlatform(t *testing.T) {
	// The base set reads the platform from a column that is blank in
	// this export; the property set reads it from Source and carries
	// an airbnb override. Both must take effect for Lake House rows.
	base := fullRuleSet(
		Rule{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
	)
	lakeHouse := RuleSet{
		{BookingField: "reservation_code", SourceExpression: "Code", Platform: PlatformAll},
		{BookingField: "guest_name", SourceExpression: "Guest", Platform: PlatformAll},
		{BookingField: "check_in_date", SourceExpression: "Arrival Date", Platform: PlatformAll},
		{BookingField: "num_nights", SourceExpression: "Nights", Platform: PlatformAll},
		{BookingField: "platform", SourceExpression: "Source", Platform: PlatformAll},
		{BookingField: "listing_name", SourceExpression: "Listing", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: PlatformAirbnb, IsOverride: true},
	}
	catalog := testCatalog(
		[]string{"Code", "Guest", "Arrival Date", "Nights", "Channel", "Listing", "Rate", "Source"},
		Row{"LH-1", "Jane Mercer", "2024-03-15", "3", "", "Lake House", "100", "Airbnb"},
	)

	selector := func(listing string) RuleSet {
		if listing == "Lake House" {
			return lakeHouse
		}
		return nil
	}

	result, err := NewDeriver(nil).Derive(catalog, base, selector)
	require.NoError(t, err)
	require.Len(t, result.Drafts, 1)

	draft := result.Drafts[0]
	assert.Equal(t, PlatformAirbnb, draft.Platform)
	rate, ok := draft.Field("nightly_rate")
	require.True(t, ok)
	assert.InDelta(t, 97.0, rate.Number(), 0.001)
}
