package errors

import "unicode"

// MaxNodeIDLength bounds node identifiers accepted from external input.
const MaxNodeIDLength = 256

// ValidateNodeID checks a node identifier coming from an API request.
// Empty IDs are not rejected here; the sanitizer drops such nodes with a
// warning instead of failing the whole request.
func ValidateNodeID(id string) error {
	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}
	for _, r := range id {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", id)
		}
	}
	return nil
}
