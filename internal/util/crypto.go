package util

import (
	"crypto/subtle"
)

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// MaskCode hides most of a pairing code for log output.
func MaskCode(code string) string {
	if len(code) <= 3 {
		return "***"
	}
	return code[:3] + "-***"
}
