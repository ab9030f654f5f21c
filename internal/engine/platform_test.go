package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPlatform(t *testing.T) {
	catalog := testCatalog([]string{"Channel", "Rate"})
	rules := RuleSet{
		{BookingField: "platform", SourceExpression: "Channel", Platform: PlatformAll},
	}

	tests := []struct {
		name string
		cell string
		want Platform
	}{
		{name: "exact keyword", cell: "Airbnb", want: PlatformAirbnb},
		{name: "keyword inside longer text", cell: "Airbnb (API)", want: PlatformAirbnb},
		{name: "booking dot com", cell: "Booking.com", want: PlatformBooking},
		{name: "vrbo", cell: "VRBO", want: PlatformVrbo},
		{name: "hostaway", cell: "Hostaway Direct", want: PlatformHostaway},
		{name: "wechalet one word", cell: "WeChalet", want: PlatformWeChalet},
		{name: "wechalet two words", cell: "We Chalet", want: PlatformWeChalet},
		{name: "monsieur chalets", cell: "Monsieur Chalets", want: PlatformMonsieurChalets},
		{name: "chalets alone", cell: "Les Chalets", want: PlatformMonsieurChalets},
		{name: "direct etransfer before direct", cell: "direct-etransfer", want: PlatformDirectETransfer},
		{name: "plain direct", cell: "Direct", want: PlatformDirect},
		{name: "google", cell: "google travel", want: PlatformGoogle},
		{name: "prefix stripped", cell: "platform:airbnb", want: PlatformAirbnb},
		{name: "whitespace and case folded", cell: "  AIRBNB  ", want: PlatformAirbnb},
		{name: "no keyword defaults to all", cell: "telephone", want: PlatformAll},
		{name: "empty cell defaults to all", cell: "", want: PlatformAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{tt.cell, "100"}
			assert.Equal(t, tt.want, ClassifyPlatform(row, rules, catalog))
		})
	}
}

func TestClassifyPlatform_NoPlatformRule(t *testing.T) {
	catalog := testCatalog([]string{"Channel"})
	rules := RuleSet{
		{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: PlatformAll},
	}

	assert.Equal(t, PlatformAll, ClassifyPlatform(Row{"Airbnb"}, rules, catalog))
}

func TestClassifyPlatform_IgnoresOverrides(t *testing.T) {
	// Platform detection always uses the base rule: overrides apply
	// only after the platform is known.
	catalog := testCatalog([]string{"Channel", "Source"})
	rules := RuleSet{
		{BookingField: "platform", SourceExpression: "Channel", Platform: PlatformAll},
		{BookingField: "platform", SourceExpression: "Source", Platform: PlatformAirbnb, IsOverride: true},
	}

	row := Row{"vrbo", "airbnb"}
	assert.Equal(t, PlatformVrbo, ClassifyPlatform(row, rules, catalog))
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" Airbnb ")
	assert.NoError(t, err)
	assert.Equal(t, PlatformAirbnb, p)

	_, err = ParsePlatform("expedia")
	assert.Error(t, err)
}
