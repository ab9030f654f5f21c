package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMapping_OverridePrecedence(t *testing.T) {
	rules := RuleSet{
		{BookingField: "platform", SourceExpression: "Channel", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: PlatformAirbnb, IsOverride: true},
	}

	resolved := ResolveMapping(rules, PlatformAirbnb)
	require.Len(t, resolved, 2)

	rule, ok := resolved.Rule("nightly_rate")
	require.True(t, ok)
	assert.Equal(t, "Rate*0.97", rule.SourceExpression)
	assert.Equal(t, PlatformAirbnb, rule.Platform)

	// The base rule keeps its position: the override replaces in place.
	assert.Equal(t, []string{"platform", "nightly_rate"}, resolved.Fields())
}

func TestResolveMapping_BaseOnlyForOtherPlatforms(t *testing.T) {
	rules := RuleSet{
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: PlatformAirbnb, IsOverride: true},
	}

	for _, platform := range []Platform{PlatformAll, PlatformVrbo, PlatformBooking} {
		resolved := ResolveMapping(rules, platform)
		rule, ok := resolved.Rule("nightly_rate")
		require.True(t, ok, "platform %s", platform)
		assert.Equal(t, "Rate", rule.SourceExpression, "platform %s", platform)
	}
}

func TestResolveMapping_OverrideAddsNewField(t *testing.T) {
	rules := RuleSet{
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		{BookingField: "channel_fee", SourceExpression: "Rate*0.03", Platform: PlatformAirbnb, IsOverride: true},
	}

	resolved := ResolveMapping(rules, PlatformAirbnb)
	require.Len(t, resolved, 2)
	_, ok := resolved.Rule("channel_fee")
	assert.True(t, ok)

	// Rows on other platforms never see the airbnb-only field.
	resolved = ResolveMapping(rules, PlatformVrbo)
	require.Len(t, resolved, 1)
	_, ok = resolved.Rule("channel_fee")
	assert.False(t, ok)
}

func TestResolveMapping_BlankExpressionsExcluded(t *testing.T) {
	rules := RuleSet{
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		{BookingField: "cleaning_fee", SourceExpression: "   ", Platform: PlatformAll},
		{BookingField: "sales_tax", SourceExpression: "", Platform: PlatformAll},
	}

	resolved := ResolveMapping(rules, PlatformAll)
	assert.Equal(t, []string{"nightly_rate"}, resolved.Fields())
}

func TestResolveMapping_DuplicateLastWriteWins(t *testing.T) {
	rules := RuleSet{
		{BookingField: "nightly_rate", SourceExpression: "Old Rate", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "New Rate", Platform: PlatformAll},
	}

	resolved := ResolveMapping(rules, PlatformAll)
	require.Len(t, resolved, 1)
	rule, _ := resolved.Rule("nightly_rate")
	assert.Equal(t, "New Rate", rule.SourceExpression)
}

func TestResolveMapping_Idempotent(t *testing.T) {
	rules := RuleSet{
		{BookingField: "platform", SourceExpression: "Channel", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
		{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: PlatformAirbnb, IsOverride: true},
		{BookingField: "cleaning_fee", SourceExpression: "Cleaning", Platform: PlatformBooking, IsOverride: true},
	}

	first := ResolveMapping(rules, PlatformAirbnb)
	second := ResolveMapping(rules, PlatformAirbnb)
	assert.Equal(t, first, second)
}

func TestRuleSet_MissingRequiredFields(t *testing.T) {
	rules := RuleSet{
		{BookingField: "reservation_code", SourceExpression: "Code", Platform: PlatformAll},
		{BookingField: "guest_name", SourceExpression: "Guest", Platform: PlatformAll},
		{BookingField: "check_in_date", SourceExpression: "Arrival", Platform: PlatformAll},
		{BookingField: "num_nights", SourceExpression: "Nights", Platform: PlatformAll},
		{BookingField: "platform", SourceExpression: "Channel", Platform: PlatformAll},
	}

	missing := rules.MissingRequiredFields()
	assert.Equal(t, []string{"listing_name"}, missing)

	rules = append(rules, Rule{BookingField: "listing_name", SourceExpression: "Listing", Platform: PlatformAll})
	assert.Empty(t, rules.MissingRequiredFields())
}

func TestRuleSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rules   RuleSet
		wantErr error
	}{
		{
			name: "valid set",
			rules: RuleSet{
				{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
				{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: PlatformAirbnb, IsOverride: true},
			},
		},
		{
			name:    "base rule flagged as override",
			rules:   RuleSet{{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll, IsOverride: true}},
			wantErr: ErrRuleBaseOverride,
		},
		{
			name:    "unknown platform",
			rules:   RuleSet{{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: "expedia"}},
			wantErr: ErrRuleUnknownPlatform,
		},
		{
			name:    "missing booking field",
			rules:   RuleSet{{BookingField: " ", SourceExpression: "Rate", Platform: PlatformAll}},
			wantErr: ErrRuleFieldRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
