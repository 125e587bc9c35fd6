package middleware

import (
	"net/http"
	"strings"

	"clinic-booking/config"

	"github.com/gorilla/mux"
)

const (
	corsAllowedHeaders = "Content-Type, Authorization"
	corsMaxAge         = "600"
)

// CORSMiddleware answers browser preflights for the booking widget and the admin panel.
type CORSMiddleware struct {
	allowAll bool
	origins  map[string]struct{}
}

// NewCORSMiddleware allows the configured origins; "*" allows any origin.
func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	m := &CORSMiddleware{origins: make(map[string]struct{}, len(cfg.AllowedOrigins))}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			m.allowAll = true
			continue
		}
		m.origins[strings.TrimSuffix(origin, "/")] = struct{}{}
	}
	return m
}

// Handle wraps the whole router so preflights are answered before route matching. A
// preflight is accepted only if a route serves the requested method on that path.
func (m *CORSMiddleware) Handle(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		allowed := origin != "" && m.allows(origin)
		if allowed {
			if m.allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
		}

		requested := req.Header.Get("Access-Control-Request-Method")
		if req.Method != http.MethodOptions || requested == "" {
			router.ServeHTTP(w, req)
			return
		}

		if !allowed {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		probe := req.Clone(req.Context())
		probe.Method = requested
		var match mux.RouteMatch
		if !router.Match(probe, &match) {
			if match.MatchErr == mux.ErrMethodMismatch {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Access-Control-Allow-Methods", requested+", "+http.MethodOptions)
		w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		w.Header().Set("Access-Control-Max-Age", corsMaxAge)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (m *CORSMiddleware) allows(origin string) bool {
	if m.allowAll {
		return true
	}
	_, ok := m.origins[strings.TrimSuffix(origin, "/")]
	return ok
}
