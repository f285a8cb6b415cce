package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openjournal/journal-backend/internal/auth"
	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/models"
	"github.com/openjournal/journal-backend/internal/repository"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal returns the authenticated user attached by the auth guard,
// or nil on public routes.
func Principal(r *http.Request) *models.User {
	user, _ := r.Context().Value(principalKey).(*models.User)
	return user
}

// RequireAuth gates a route group behind bearer-token authentication.
// Routes not wrapped by it are public.
func RequireAuth(tokens *auth.TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return guard(tokens, users, false)
}

// RequireRefresh is the auth gate for the refresh route only: the token's
// signature must still verify but its expiry may have elapsed.
func RequireRefresh(tokens *auth.TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return guard(tokens, users, true)
}

// guard verifies the bearer token and re-resolves the principal from the user
// store, defending against tokens for since-deleted users. Every failure
// collapses to a bare 401; expired, malformed and unknown-user are
// indistinguishable to the caller.
func guard(tokens *auth.TokenService, users repository.UserRepository, allowExpired bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				httperr.WriteError(w, httperr.ErrUnauthorized)
				return
			}

			claims, err := tokens.Verify(token, allowExpired)
			if err != nil {
				httperr.WriteError(w, httperr.ErrUnauthorized)
				return
			}

			user, err := users.FindByUsername(r.Context(), claims.Username)
			if err != nil {
				httperr.WriteError(w, httperr.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of an "Authorization: Bearer x" header.
func extractBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
