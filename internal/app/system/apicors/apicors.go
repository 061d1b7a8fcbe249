// Package apicors is the CORS middleware for the dashboard API. The API
// authenticates with a bearer key, not cookies, so any origin may call it
// and credentials stay disallowed. Host applications embed the editor from
// their own domains, which is exactly the cross-origin case this covers.
package apicors

import (
	"net/http"
)

// Middleware allows any origin with no credentials and answers preflight
// OPTIONS requests directly.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
