package middleware

import "net/http"

// SecurityHeaders sets baseline hardening headers. Responses carry payment
// keys and balances, so caching is disabled across the board.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store")

			// HSTS only when TLS is active
			if r.TLS != nil {
				h.Set("Strict-Transport-Security",
					"max-age=31536000; includeSubDomains")
			}

			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
