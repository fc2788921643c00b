package middleware

import (
	"net/http"
	"strings"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/auth"
)

// Session extracts the bearer token and, when valid, attaches the user id
// to the request context. A missing or invalid token is not an error: the
// ledger keeps working in local-only mode and the sync engine simply skips
// the remote mirror.
func Session(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := domain.ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a valid session. Only the sync
// surface needs it; every local operation stays open.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := domain.UserIDFromContext(r.Context()); !ok {
			http.Error(w, "session required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
