package validation

import (
	"fmt"

	dErrors "consentd/pkg/domain-errors"
)

// Request body limits
const (
	// MaxBodySize is the default request body cap (64 KB).
	MaxBodySize = 64 * 1024
)

// Element count limits
const (
	// MaxPreferenceEntries is the most keys accepted in a preference save.
	// Unknown keys are dropped later, so this only bounds the work done on them.
	MaxPreferenceEntries = 20

	// MaxEventProperties is the most properties one tracked event may carry.
	MaxEventProperties = 50
)

// String length limits
const (
	// MaxEventNameLength is the maximum length of a tracked event name.
	MaxEventNameLength = 128

	// MaxPropertyKeyLength is the maximum length of an event property key.
	MaxPropertyKeyLength = 100
)

// CheckCount validates that a collection does not exceed the maximum count.
func CheckCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckKeys validates the size of m and the length of each of its keys.
func CheckKeys[V any](fieldName string, m map[string]V, maxCount, maxKeyLength int) error {
	if err := CheckCount(fieldName, len(m), maxCount); err != nil {
		return err
	}
	for k := range m {
		if len(k) > maxKeyLength {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s key exceeds max length of %d", fieldName, maxKeyLength))
		}
	}
	return nil
}
