package gateway

import (
	"net/http"

	"github.com/pquerna/otp/totp"
)

// totpHeader carries the one-time code for admin endpoints.
const totpHeader = "X-TOTP-Code"

// TOTPGuard protects mutating admin endpoints with a time-based one-time
// password. An empty secret disables the endpoints entirely rather than
// leaving them open.
type TOTPGuard struct {
	Secret string
}

// Require wraps a handler with TOTP validation.
func (g *TOTPGuard) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.Secret == "" {
			http.Error(w, `{"error":"admin endpoints disabled"}`, http.StatusForbidden)
			return
		}
		code := r.Header.Get(totpHeader)
		if code == "" || !totp.Validate(code, g.Secret) {
			http.Error(w, `{"error":"invalid or missing TOTP code"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
