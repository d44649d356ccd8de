package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORS answers cross-origin requests from the configured origins. A "*"
// origin admits any caller but never with credentials. Preflight requests
// stop here; everything else continues to the next handler.
func CORS(cfg *CORSConfig) Func {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	wildcard := slices.Contains(cfg.Origins, "*")

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || len(cfg.Origins) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			if origin != "" && (wildcard || slices.Contains(cfg.Origins, origin)) {
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if cfg.AllowCredentials && !wildcard {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
