package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Header naming the acting user. Token issuance and verification beyond
// the shared credential live outside this system.
const userHeader = "X-Recall-User"

const defaultUser = "default"

// Authenticator enforces the bearer credential on API routes.
type Authenticator struct {
	token string
}

// NewAuthenticator creates an authenticator for the shared bearer token.
// An empty configured token accepts any non-empty credential, for setups
// where verification is done upstream.
func NewAuthenticator(token string) *Authenticator {
	return &Authenticator{token: token}
}

// Require wraps a handler; requests without a bearer credential get 401,
// requests with a wrong one get 403.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.auth"
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
			return
		}
		presented := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if presented == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
			return
		}
		if a.token != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(a.token)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden", NewKind(op, ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// UserID resolves the acting user from the request.
func UserID(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(userHeader)); u != "" {
		return u
	}
	return defaultUser
}
