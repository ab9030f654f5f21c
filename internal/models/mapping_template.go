package models

import (
	"github.com/hostfolio/bookpipe/internal/engine"
)

// MappingTemplate is a named, reusable set of mapping rules. A template
// may be global or scoped to one property; per-property templates take
// precedence over the global default during derivation.
type MappingTemplate struct {
	BaseModel

	// Name is a human-readable name for this template.
	Name string `gorm:"size:255;not null" json:"name"`

	// Description provides additional details about the template.
	Description string `gorm:"size:1024" json:"description,omitempty"`

	// PropertyID optionally scopes this template to a single property.
	// If nil, the template is a global candidate.
	PropertyID *ULID `gorm:"type:varchar(26);index" json:"property_id,omitempty"`

	// IsDefault marks this template as the one applied when no explicit
	// choice is made. At most one default per scope.
	IsDefault bool `gorm:"default:false;index" json:"is_default"`

	// Rules are the template's mapping rules, in evaluation order.
	Rules []MappingTemplateRule `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"rules"`
}

// TableName returns the table name for the MappingTemplate model.
func (MappingTemplate) TableName() string {
	return "mapping_templates"
}

// Validate checks if the template configuration is valid.
func (t *MappingTemplate) Validate() error {
	if t.Name == "" {
		return ErrValidation{Field: "name", Message: "name is required"}
	}
	for i := range t.Rules {
		if err := t.Rules[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RuleSet converts the template's stored rules into the engine's rule
// representation, preserving Position order.
func (t *MappingTemplate) RuleSet() engine.RuleSet {
	rules := make(engine.RuleSet, 0, len(t.Rules))
	for _, r := range t.Rules {
		rules = append(rules, engine.Rule{
			BookingField:     r.BookingField,
			SourceExpression: r.SourceExpression,
			Platform:         engine.Platform(r.Platform),
			IsOverride:       r.IsOverride,
		})
	}
	return rules
}

// MappingTemplateRule is one stored rule row of a template. Position
// controls both resolution order and the slot a platform override
// replaces.
type MappingTemplateRule struct {
	BaseModel

	// TemplateID is the owning template.
	TemplateID ULID `gorm:"type:varchar(26);not null;index" json:"template_id"`

	// BookingField is the canonical booking field this rule produces.
	BookingField string `gorm:"size:64;not null" json:"booking_field"`

	// SourceExpression is a column name or arithmetic formula over
	// column names and previously derived fields.
	SourceExpression string `gorm:"type:text;not null" json:"source_expression"`

	// Platform scopes the rule: "all" for the base bucket, or a
	// specific platform for overrides and additions.
	Platform string `gorm:"size:32;not null;default:all;index" json:"platform"`

	// IsOverride marks a platform-scoped rule that replaces the base
	// rule for the same booking field.
	IsOverride bool `gorm:"default:false" json:"is_override"`

	// Position is the rule's slot in the template's ordering.
	Position int `gorm:"not null;default:0;index" json:"position"`
}

// TableName returns the table name for the MappingTemplateRule model.
func (MappingTemplateRule) TableName() string {
	return "mapping_template_rules"
}

// Validate checks if the rule configuration is valid.
func (r *MappingTemplateRule) Validate() error {
	if r.BookingField == "" {
		return ErrValidation{Field: "booking_field", Message: "booking_field is required"}
	}
	if r.SourceExpression == "" {
		return ErrValidation{Field: "source_expression", Message: "source_expression is required"}
	}
	if !engine.Platform(r.Platform).IsValid() {
		return ErrValidation{Field: "platform", Message: "unknown platform: " + r.Platform}
	}
	if r.IsOverride && engine.Platform(r.Platform) == engine.PlatformAll {
		return ErrValidation{Field: "is_override", Message: "base rules cannot be overrides"}
	}
	return nil
}
