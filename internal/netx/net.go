// Package netx holds small HTTP helpers that do not belong to a handler.
package netx

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/containerhub/internal/common"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively. ok is false when the
// header is missing, uses another scheme or carries an empty token.
func BearerToken(r *http.Request) (token string, ok bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, value, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
