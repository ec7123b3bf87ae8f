package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

func writeAuthErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false
	}
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// RequireAPI guards an API route: a missing credential is 401, a credential
// the verifier rejects is 403. The verified identity is placed on the
// request context.
func RequireAPI(verifier TokenVerifier, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeAuthErr(w, http.StatusUnauthorized, "unauthorized: no token provided")
				return
			}
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if log != nil {
					log.WithError(err).WithFields(logrus.Fields{
						"path": r.URL.Path,
					}).Warn("token verification failed")
				}
				writeAuthErr(w, http.StatusForbidden, "forbidden: invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentityContext(r.Context(), id)))
		})
	}
}
