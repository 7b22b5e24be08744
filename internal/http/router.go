// Package http wires the API routes and middleware.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"property-agent/internal/handlers"
	"property-agent/internal/retrieval"
	"property-agent/internal/service"
	"property-agent/internal/storage"
)

// Deps holds dependencies for the HTTP router. Tours is nil when
// Calendly is not configured.
type Deps struct {
	Engine        retrieval.Engine
	AnswerService service.AnswerService
	OfferStore    storage.OfferStore
	Tours         handlers.TourScheduler
	HealthChecker handlers.CollectionChecker
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	documentsHandler := handlers.NewDocumentsHandler(deps.Engine)
	searchHandler := handlers.NewSearchHandler(deps.Engine)
	askHandler := handlers.NewAskHandler(deps.AnswerService)
	offersHandler := handlers.NewOffersHandler(deps.OfferStore)
	toursHandler := handlers.NewToursHandler(deps.Tours)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecker)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Post("/documents", documentsHandler.Ingest)
		r.Delete("/properties/{propertyID}/documents", documentsHandler.DeleteProperty)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodPost, "/ask", askHandler)

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", offersHandler.Create)
			r.Get("/", offersHandler.List)
			r.Get("/{offerID}", offersHandler.Get)
			r.Post("/{offerID}/response", offersHandler.Respond)
			r.Delete("/{offerID}", offersHandler.Delete)
		})
		r.Get("/properties/{propertyID}/offers/stats", offersHandler.Stats)

		r.Route("/tours", func(r chi.Router) {
			r.Get("/availability", toursHandler.Availability)
			r.Post("/", toursHandler.Book)
			r.Get("/{bookingID}", toursHandler.Get)
			r.Post("/{bookingID}/cancellation", toursHandler.Cancel)
			r.Post("/{bookingID}/reschedule", toursHandler.Reschedule)
		})
	})

	return r
}
