package delhivery

import "regexp"

var pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// ValidPincode reports whether value is a six-digit Indian postal code.
func ValidPincode(value string) bool {
	return pincodeRe.MatchString(value)
}
