package engine

import "errors"

// Structural rule-set errors. These surface before derivation runs and
// block proceeding to preview.
var (
	// ErrRuleFieldRequired indicates a rule without a booking field name.
	ErrRuleFieldRequired = errors.New("rule booking field is required")

	// ErrRuleUnknownPlatform indicates a rule with an unknown platform tag.
	ErrRuleUnknownPlatform = errors.New("rule platform is not a known platform tag")

	// ErrRuleBaseOverride indicates a base (ALL) rule flagged as an override.
	ErrRuleBaseOverride = errors.New("a rule with platform 'all' cannot be an override")

	// ErrEditNotAllowed indicates an edit targeting a field outside the
	// financial allow-list.
	ErrEditNotAllowed = errors.New("field is not eligible for manual edit")

	// ErrEditRowOutOfRange indicates an edit targeting a row index with
	// no derived draft.
	ErrEditRowOutOfRange = errors.New("edit row index matches no draft")
)
