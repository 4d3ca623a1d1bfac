package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/flashcard-api/internal/api"
	apiMiddleware "github.com/phrazzld/flashcard-api/internal/api/middleware"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
)

const corsMaxAge = 300

// setupRouter builds the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(app.requestLogger)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.passwordVerifier, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.reviewService, app.logger)
	aiHandler := api.NewAIHandler(app.aiService, app.logger)
	highlightHandler := api.NewHighlightHandler(app.highlightService, app.logger)
	importHandler := api.NewImportHandler(app.importService, int64(app.config.Server.MaxUploadMB)<<20, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/decks", func(r chi.Router) {
				r.Post("/", deckHandler.CreateDeck)
				r.Get("/", deckHandler.ListDecks)
				r.Get("/{id}", deckHandler.GetDeck)
				r.Put("/{id}", deckHandler.UpdateDeck)
				r.Delete("/{id}", deckHandler.DeleteDeck)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", cardHandler.CreateCard)
				r.Get("/", cardHandler.ListCards)
				r.Get("/search", cardHandler.SearchCards)
				r.Get("/{id}", cardHandler.GetCard)
				r.Put("/{id}", cardHandler.UpdateCard)
				r.Delete("/{id}", cardHandler.DeleteCard)
				r.Post("/{id}/review", cardHandler.ReviewCard)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/generate-flashcard", aiHandler.GenerateFlashcard)
				r.Post("/generate-multiple", aiHandler.GenerateMultiple)
				r.Post("/improve-flashcard", aiHandler.ImproveFlashcard)
				r.Post("/suggest-tags", aiHandler.SuggestTags)
			})

			r.Route("/highlights", func(r chi.Router) {
				r.Post("/", highlightHandler.CreateHighlight)
				r.Get("/", highlightHandler.ListHighlights)
				r.Get("/{id}", highlightHandler.GetHighlight)
			})

			r.Route("/import", func(r chi.Router) {
				r.Get("/formats", importHandler.Formats)
				r.Post("/preview", importHandler.Preview)
				r.Post("/upload", importHandler.Upload)
				r.Post("/validate", importHandler.Validate)
			})
		})
	})

	r.Get("/health", app.health)

	return r
}

// requestLogger seeds each request context with the application logger.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), app.logger)))
	})
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
	}
}
