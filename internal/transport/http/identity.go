package http

import "net/http"

// Identity arrives via trusted headers set by the auth layer in front
// of this service; real authentication is out of scope here.
const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
	roleAdmin      = "admin"
)

// requestUserID returns the caller's user id, writing a 401 and
// returning false if the header is absent.
func requestUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codeUserIDRequired, "user not authenticated")
		return "", false
	}
	return userID, true
}

// RequireAdmin rejects requests whose role header is not admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requestUserID(w, r); !ok {
			return
		}
		if r.Header.Get(userRoleHeader) != roleAdmin {
			writeError(w, http.StatusForbidden, codeForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
