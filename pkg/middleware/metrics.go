package middleware

import (
	"net/http"
	"strings"
	"time"

	"petsitter/pkg/metrics"

	"github.com/julienschmidt/httprouter"
)

// Metrics records request counts and latency labelled by route pattern,
// resolved through the router so ids do not explode label cardinality.
func Metrics(m *metrics.Metrics, router *httprouter.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveHTTP(r.Method, routePattern(router, r), wrapped.statusCode, time.Since(start))
		})
	}
}

func routePattern(router *httprouter.Router, r *http.Request) string {
	if router == nil {
		return "unmatched"
	}
	handle, params, _ := router.Lookup(r.Method, r.URL.Path)
	if handle == nil {
		return "unmatched"
	}
	if len(params) == 0 {
		return r.URL.Path
	}

	segments := strings.Split(r.URL.Path, "/")
	next := 0
	for i, seg := range segments {
		if next < len(params) && seg == params[next].Value {
			segments[i] = ":" + params[next].Key
			next++
		}
	}
	return strings.Join(segments, "/")
}
