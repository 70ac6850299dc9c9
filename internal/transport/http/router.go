// Package http assembles the registrar's HTTP surface. It stays thin:
// routing, authentication, and error translation live here, while all
// business rules live in the services packages.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainhandler "registrar/internal/domains/handler"
	requesthandler "registrar/internal/requests/handler"
	"registrar/pkg/platform/httputil"
)

// RouterConfig carries what the router needs beyond the handlers themselves.
type RouterConfig struct {
	JWTSigningKey string
	AdminToken    string
	HealthChecks  map[string]func() error
}

// NewRouter wires the public, authenticated, and staff route groups.
//
//	/domains/{name}/available     public
//	/requests, /domains           bearer token
//	/review, /manage              bearer token + admin token
func NewRouter(domains *domainhandler.Handler, requests *requesthandler.Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", healthz(cfg.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.JWTSigningKey))

		// Availability is public but benefits from the same auth context.
		domains.Register(r)
		requests.Register(r)

		r.Route("/manage", func(r chi.Router) {
			r.Use(RequireAdmin(cfg.AdminToken))
			domains.RegisterManage(r)
		})
		r.Route("/review", func(r chi.Router) {
			r.Use(RequireAdmin(cfg.AdminToken))
			requests.RegisterReview(r)
		})
	})

	return r
}

func healthz(checks map[string]func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(); err != nil {
				status[name] = err.Error()
				healthy = false
			} else {
				status[name] = "ok"
			}
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	}
}
