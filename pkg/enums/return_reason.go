package enums

import "fmt"

// ReturnReason captures why a customer wants to send an item back.
type ReturnReason string

const (
	ReturnReasonDamaged      ReturnReason = "DAMAGED"
	ReturnReasonDefective    ReturnReason = "DEFECTIVE"
	ReturnReasonWrongItem    ReturnReason = "WRONG_ITEM"
	ReturnReasonQualityIssue ReturnReason = "QUALITY_ISSUE"
	ReturnReasonOther        ReturnReason = "OTHER"
)

var validReturnReasons = []ReturnReason{
	ReturnReasonDamaged,
	ReturnReasonDefective,
	ReturnReasonWrongItem,
	ReturnReasonQualityIssue,
	ReturnReasonOther,
}

// String implements fmt.Stringer.
func (r ReturnReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnReason.
func (r ReturnReason) IsValid() bool {
	for _, candidate := range validReturnReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReturnReason converts raw input into a ReturnReason.
func ParseReturnReason(value string) (ReturnReason, error) {
	for _, candidate := range validReturnReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return reason %q", value)
}
