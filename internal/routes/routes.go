package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/openjournal/journal-backend/internal/auth"
	"github.com/openjournal/journal-backend/internal/handlers"
	"github.com/openjournal/journal-backend/internal/middleware"
	"github.com/openjournal/journal-backend/internal/repository"
)

// Setup wires the HTTP surface. Routes outside the guarded groups are public.
func Setup(r *chi.Mux, authHandler *handlers.AuthHandler, journalHandler *handlers.JournalHandler, tokens *auth.TokenService, users repository.UserRepository) {
	// Public auth routes
	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)

	// Refresh is the only route where an expired token is accepted
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRefresh(tokens, users))
		r.Get("/auth/refresh", authHandler.Refresh)
	})

	// Public journal health check
	r.Get("/journals/healthCheck", journalHandler.HealthCheck)

	// Everything below requires a live access token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, users))

		r.Post("/journals", journalHandler.CreateJournal)
		r.Get("/journals/all", journalHandler.GetAllJournals)
		r.Get("/journals/{id}", journalHandler.GetJournal)
		r.Patch("/journals/{id}", journalHandler.UpdateJournal)
		r.Delete("/journals/{id}", journalHandler.DeleteJournal)

		r.Post("/journals/{id}/pages", journalHandler.CreatePage)
		r.Patch("/journals/{id}/pages/{pageId}", journalHandler.UpdatePage)
		r.Delete("/journals/{id}/pages/{pageId}", journalHandler.DeletePage)
		r.Put("/journals/{id}/pages/{pageId}/photo", journalHandler.UploadPagePhoto)
	})
}
