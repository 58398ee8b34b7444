package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern is the matched chi pattern, e.g. "/api/tasks/{id}", so
// labels stay bounded no matter how many task ids are requested.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
