package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostfolio/bookpipe/internal/engine"
)

func TestMappingTemplate_TableName(t *testing.T) {
	assert.Equal(t, "mapping_templates", MappingTemplate{}.TableName())
	assert.Equal(t, "mapping_template_rules", MappingTemplateRule{}.TableName())
}

func TestMappingTemplate_Validate(t *testing.T) {
	tests := []struct {
		name        string
		template    MappingTemplate
		wantErr     bool
		errField    string
		errContains string
	}{
		{
			name: "valid template",
			template: MappingTemplate{
				Name: "Airbnb Standard",
				Rules: []MappingTemplateRule{
					{BookingField: "reservation_code", SourceExpression: "Confirmation Code", Platform: "all"},
					{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: "airbnb", IsOverride: true},
				},
			},
			wantErr: false,
		},
		{
			name:        "missing name",
			template:    MappingTemplate{},
			wantErr:     true,
			errField:    "name",
			errContains: "name is required",
		},
		{
			name: "rule missing booking field",
			template: MappingTemplate{
				Name: "Broken",
				Rules: []MappingTemplateRule{
					{SourceExpression: "Rate", Platform: "all"},
				},
			},
			wantErr:     true,
			errField:    "booking_field",
			errContains: "booking_field is required",
		},
		{
			name: "rule missing expression",
			template: MappingTemplate{
				Name: "Broken",
				Rules: []MappingTemplateRule{
					{BookingField: "nightly_rate", Platform: "all"},
				},
			},
			wantErr:     true,
			errField:    "source_expression",
			errContains: "source_expression is required",
		},
		{
			name: "rule with unknown platform",
			template: MappingTemplate{
				Name: "Broken",
				Rules: []MappingTemplateRule{
					{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: "expedia"},
				},
			},
			wantErr:     true,
			errField:    "platform",
			errContains: "unknown platform",
		},
		{
			name: "base rule marked override",
			template: MappingTemplate{
				Name: "Broken",
				Rules: []MappingTemplateRule{
					{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: "all", IsOverride: true},
				},
			},
			wantErr:     true,
			errField:    "is_override",
			errContains: "base rules cannot be overrides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var valErr ErrValidation
				require.ErrorAs(t, err, &valErr)
				assert.Equal(t, tt.errField, valErr.Field)
				assert.Contains(t, valErr.Message, tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMappingTemplate_RuleSet(t *testing.T) {
	template := MappingTemplate{
		Name: "Standard",
		Rules: []MappingTemplateRule{
			{BookingField: "reservation_code", SourceExpression: "Code", Platform: "all", Position: 0},
			{BookingField: "nightly_rate", SourceExpression: "Rate", Platform: "all", Position: 1},
			{BookingField: "nightly_rate", SourceExpression: "Rate*0.97", Platform: "airbnb", IsOverride: true, Position: 2},
		},
	}

	rules := template.RuleSet()
	require.Len(t, rules, 3)
	assert.Equal(t, "reservation_code", rules[0].BookingField)
	assert.Equal(t, engine.PlatformAll, rules[0].Platform)
	assert.Equal(t, engine.PlatformAirbnb, rules[2].Platform)
	assert.True(t, rules[2].IsOverride)
}
