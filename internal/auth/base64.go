package auth

import (
	"encoding/base64"
	"regexp"
	"strings"
)

var invalidBase64 = regexp.MustCompile(`[^A-Za-z0-9+/=]`)

// EncodeBase64 encodes s with the standard alphabet and padding.
func EncodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeBase64 decodes input best-effort. Characters outside the base64
// alphabet are dropped first; clean reports whether any were found.
func DecodeBase64(input string) (decoded string, clean bool) {
	clean = !invalidBase64.MatchString(input)
	sanitized := invalidBase64.ReplaceAllString(input, "")

	if i := strings.IndexByte(sanitized, '='); i >= 0 {
		sanitized = sanitized[:i]
	}
	if len(sanitized)%4 == 1 {
		sanitized = sanitized[:len(sanitized)-1]
	}

	out, _ := base64.RawStdEncoding.DecodeString(sanitized)
	return string(out), clean
}
