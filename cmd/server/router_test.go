package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/api"
	apiMiddleware "github.com/phrazzld/flashcard-api/internal/api/middleware"
	"github.com/phrazzld/flashcard-api/internal/config"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/service/auth"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDeckService overrides ListDecks; any other method panics.
type stubDeckService struct {
	service.DeckService
	listDecks func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.DeckSummary, error)
}

func (s *stubDeckService) ListDecks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]store.DeckSummary, error) {
	return s.listDecks(ctx, userID, limit, offset)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			LogLevel:       "info",
			AllowedOrigins: []string{"https://app.example.com"},
			MaxUploadMB:    50,
		},
		Auth: config.AuthConfig{
			JWTSecret:                   "router-test-secret-that-is-long-enough",
			BCryptCost:                  4,
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 1440,
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	cfg := testConfig()
	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	return &application{
		config:           cfg,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(apiMiddleware.TraceHeader))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/decks"},
		{http.MethodPost, "/api/decks"},
		{http.MethodGet, "/api/decks/1"},
		{http.MethodPut, "/api/decks/1"},
		{http.MethodDelete, "/api/decks/1"},
		{http.MethodPost, "/api/cards"},
		{http.MethodGet, "/api/cards"},
		{http.MethodGet, "/api/cards/search"},
		{http.MethodGet, "/api/cards/1"},
		{http.MethodPut, "/api/cards/1"},
		{http.MethodDelete, "/api/cards/1"},
		{http.MethodPost, "/api/cards/1/review"},
		{http.MethodPost, "/api/ai/generate-flashcard"},
		{http.MethodPost, "/api/ai/generate-multiple"},
		{http.MethodPost, "/api/ai/improve-flashcard"},
		{http.MethodPost, "/api/ai/suggest-tags"},
		{http.MethodPost, "/api/highlights"},
		{http.MethodGet, "/api/highlights"},
		{http.MethodGet, "/api/highlights/" + uuid.NewString()},
		{http.MethodGet, "/api/import/formats"},
		{http.MethodPost, "/api/import/preview"},
		{http.MethodPost, "/api/import/upload"},
		{http.MethodPost, "/api/import/validate"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body struct {
				Error   string `json:"error"`
				TraceID string `json:"trace_id"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "Authorization header required", body.Error)
			assert.NotEmpty(t, body.TraceID)
		})
	}
}

func TestAuthenticatedRequestReachesHandler(t *testing.T) {
	app := newTestApplication(t)
	userID := uuid.New()

	app.deckService = &stubDeckService{
		listDecks: func(ctx context.Context, gotUser uuid.UUID, limit, offset int) ([]store.DeckSummary, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, service.DefaultPageSize, limit)
			assert.Zero(t, offset)
			return []store.DeckSummary{{Deck: domain.Deck{ID: 1, Name: "Default"}, CardCount: 3}}, nil
		},
	}
	router := app.setupRouter()

	token, err := app.jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/decks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.DeckListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Decks, 1)
	assert.Equal(t, "Default", resp.Decks[0].Name)
	assert.Equal(t, 1, resp.Count)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	tests := []struct {
		name        string
		origin      string
		allowOrigin string
	}{
		{name: "allowed origin", origin: "https://app.example.com", allowOrigin: "https://app.example.com"},
		{name: "unknown origin", origin: "https://evil.example.com", allowOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/decks", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
