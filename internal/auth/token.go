// Package auth extracts the caller's Teller access token from the inbound
// Authorization header.
package auth

import (
	"encoding/base64"
	"strings"
)

// ExtractToken pulls the access token out of an Authorization header value.
// A "Basic " header is base64-decoded and the username half is the token;
// a decode failure degrades to an empty token rather than an error. Any
// other header value is used verbatim.
func ExtractToken(header string) string {
	if !strings.HasPrefix(header, "Basic ") {
		return header
	}

	b64 := strings.TrimSpace(strings.TrimPrefix(header, "Basic "))
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return ""
	}

	username, _, _ := strings.Cut(string(decoded), ":")
	return username
}
