package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"adforge-server/internal/http/handlers"
	"adforge-server/internal/middleware"
)

// RouterOptions carries the cross-cutting dependencies the route table needs.
type RouterOptions struct {
	JWTSecret      string
	RateLimit      int
	RateWindow     time.Duration
	Counter        middleware.Counter
	CountryLookup  middleware.CountryLookup
	AllowedOrigins []string
	Logger         zerolog.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Country(opts.CountryLookup))
	if opts.Counter != nil && opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.Counter, opts.RateLimit, opts.RateWindow, opts.Logger))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/metrics/summary", app.MetricsSummary)

	// Vendor and billing callbacks authenticate by shared knowledge of the
	// endpoint plus event payloads, not user JWTs.
	r.Post("/v1/webhooks/{provider}", app.ProviderWebhook)
	r.Post("/v1/billing/webhook", app.BillingWebhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))

		r.Post("/v1/profile/sync", app.SyncProfile)

		r.Post("/v1/generate/{type}", app.Generate)

		r.Route("/v1/jobs", func(r chi.Router) {
			r.Get("/", app.ListJobs)
			r.Get("/{job_id}", app.GetJob)
			r.Delete("/{job_id}", app.DeleteJob)
			r.Post("/{job_id}/retry", app.RetryJob)
			r.Post("/{job_id}/cancel", app.CancelJob)
			r.Get("/{job_id}/archive", app.ArchiveJob)
		})

		r.Route("/v1/uploads", func(r chi.Router) {
			r.Post("/presign", app.PresignUpload)
			r.Post("/confirm", app.ConfirmUpload)
		})

		r.Route("/v1/credits", func(r chi.Router) {
			r.Get("/", app.CreditBalance)
			r.Get("/history", app.CreditHistory)
		})
	})

	return r
}
