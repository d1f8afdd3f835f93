package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/linguagateway/internal/api/handlers"
	"github.com/nikhilbhutani/linguagateway/internal/api/middleware"
	"github.com/nikhilbhutani/linguagateway/internal/audit"
	"github.com/nikhilbhutani/linguagateway/internal/auth"
	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/document"
	"github.com/nikhilbhutani/linguagateway/internal/factory"
	"github.com/nikhilbhutani/linguagateway/internal/speech"
)

const apiKeyHeader = "X-API-Key"

// Deps are the services exposed over HTTP. Jobs, Queue and Audit are
// optional; their routes are not registered when nil.
type Deps struct {
	Config      *config.Config
	Translator  *factory.Translator
	Transcriber speech.Transcriber
	Documents   *document.Service
	Queue       handlers.Enqueuer
	Jobs        handlers.JobStore
	Audit       *audit.Service
	Checks      map[string]handlers.Pinger
}

type Router struct {
	mux  *chi.Mux
	deps Deps
	rl   *middleware.RateLimiter
}

func NewRouter(deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		deps: deps,
		rl:   middleware.NewRateLimiter(100, 200),
	}
}

// Close stops background work started by the router.
func (rt *Router) Close() {
	rt.rl.Stop()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	d := rt.deps

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(rt.rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(d.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Group(func(r chi.Router) {
		if d.Config.Auth.Enabled() {
			r.Use(auth.NewAPIKeyMiddleware(apiKeyHeader, d.Config.Auth.APIKeys).Authenticate)
			if d.Config.Auth.JWTSecret != "" {
				r.Use(auth.NewJWTMiddleware(d.Config.Auth.JWTSecret).Authenticate)
			} else {
				r.Use(auth.RequireClaims)
			}
		}

		require := func(perm auth.Permission) func(http.Handler) http.Handler {
			if !d.Config.Auth.Enabled() {
				return func(next http.Handler) http.Handler { return next }
			}
			return auth.RequirePermission(perm)
		}

		// Translation routes
		translateH := handlers.NewTranslationHandler(d.Translator.Handler, d.Translator.Router, d.Config.Deployment.Mode)
		docH := handlers.NewDocumentHandler(d.Documents)
		r.Group(func(r chi.Router) {
			r.Use(require(auth.PermTranslate))
			r.Post("/translate", translateH.Translate)
			r.Post("/translate/batch", translateH.Batch)
			r.Post("/detect", translateH.Detect)
			r.Get("/translate/models", translateH.Models)
			r.Get("/translate/languages", translateH.Languages)
			r.Post("/translate/document", docH.Translate)
			r.Get("/translate/document/types", docH.Types)
		})

		// Speech routes
		speechH := handlers.NewSpeechHandler(d.Transcriber)
		r.Group(func(r chi.Router) {
			r.Use(require(auth.PermSpeech))
			r.Post("/speech/transcribe", speechH.Transcribe)
			r.Get("/speech/languages", speechH.Languages)
			r.Post("/speech/meeting", speechH.Meeting)
			r.Get("/speech/stream", speechH.Stream)
		})

		// Async job routes
		if d.Queue != nil && d.Jobs != nil {
			jobH := handlers.NewJobHandler(d.Queue, d.Jobs)
			r.With(require(auth.PermTranslate)).Post("/translate/batch/async", jobH.EnqueueBatch)
			r.With(require(auth.PermSpeech)).Post("/speech/meeting/async", jobH.EnqueueMeeting)
			r.With(require(auth.PermJobsRead)).Get("/jobs/{id}", jobH.Get)
		}

		// Admin routes
		if d.Audit != nil {
			adminH := handlers.NewAdminHandler(d.Audit)
			r.With(require(auth.PermAdminRead)).Get("/admin/stats", adminH.Stats)
		}
	})

	return r
}
