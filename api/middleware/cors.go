package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Browsers may only send Content-Type and Authorization cross-origin, so
// Idempotency-Key replay is limited to same-origin and server-side clients.
var (
	corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Content-Type", "Authorization"}

	allowMethodsValue = strings.Join(corsMethods, ",")
	allowHeadersValue = strings.Join(corsHeaders, ",")
)

// CORS echoes the request Origin, falling back to defaultOrigin when the
// request has none, and answers every OPTIONS request with 204.
func CORS(defaultOrigin string) func(http.Handler) http.Handler {
	policy := cors.New(cors.Options{
		AllowOriginFunc:    func(*http.Request, string) bool { return true },
		AllowedMethods:     corsMethods,
		AllowedHeaders:     corsHeaders,
		ExposedHeaders:     []string{"X-Request-Id"},
		AllowCredentials:   true,
		MaxAge:             300,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		preflight := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				if w.Header().Get("Access-Control-Allow-Origin") == "" {
					w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				setAllowHeaders(w)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
		withPolicy := policy.Handler(preflight)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Origin") == "" && defaultOrigin != "" {
				r.Header.Set("Origin", defaultOrigin)
			}
			setAllowHeaders(w)
			withPolicy.ServeHTTP(w, r)
		})
	}
}

func setAllowHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Methods", allowMethodsValue)
	w.Header().Set("Access-Control-Allow-Headers", allowHeadersValue)
}
