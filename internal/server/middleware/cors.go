package middleware

import (
	"net/http"
	"strconv"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type"
	corsMaxAge  = 10 * 60
)

// Origins is the set of browser origins allowed to call the API and open
// the realtime socket. The zero value admits every origin.
type Origins struct {
	allowed map[string]struct{}
}

// NewOrigins builds an origin policy. An empty list, or one containing "*",
// admits every origin.
func NewOrigins(list []string) Origins {
	o := Origins{}
	for _, origin := range list {
		if origin == "*" {
			return Origins{}
		}
		if o.allowed == nil {
			o.allowed = make(map[string]struct{}, len(list))
		}
		o.allowed[origin] = struct{}{}
	}
	return o
}

// Any reports whether every origin is admitted.
func (o Origins) Any() bool {
	return len(o.allowed) == 0
}

// Allows reports whether origin may make requests. Requests without an
// Origin header do not come from a browser and are always allowed.
func (o Origins) Allows(origin string) bool {
	if origin == "" || o.Any() {
		return true
	}
	_, ok := o.allowed[origin]
	return ok
}

// CheckOrigin adapts the policy to websocket.Upgrader.CheckOrigin.
func (o Origins) CheckOrigin(r *http.Request) bool {
	return o.Allows(r.Header.Get("Origin"))
}

// CORS answers preflight requests and stamps CORS headers on responses to
// admitted origins. A preflight from a rejected origin gets 403.
func CORS(origins Origins) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if origin != "" && origins.Allows(origin) {
				h := w.Header()
				if origins.Any() {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				if preflight {
					h.Set("Access-Control-Allow-Methods", corsMethods)
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
				}
			}

			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			if !origins.Allows(origin) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
