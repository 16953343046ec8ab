package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/opsglass/alertboard/internal/httputil"
)

// APIKey guards mutating endpoints with a static shared secret. The key
// is read from the X-API-Key header, falling back to the api_key query
// parameter, and compared in constant time. There is no user or role
// distinction: absence or mismatch is always unauthorized.
func APIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
