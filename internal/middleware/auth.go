package middleware

import (
	"net/http"
	"slices"

	"bazaar-be/internal/auth"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/utils"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Authenticate resolves the caller from the access token. Requests without a
// token pass through anonymously; a token that fails verification is rejected.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.ExtractAccessToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Parse(raw)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token", zap.Error(err))
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), id.UserID, id.Email, id.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits authenticated callers whose role is one of roles.
// With no roles any authenticated caller is admitted.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, utils.GetUserRoleFromContext(r.Context())) {
				utils.WriteJSONError(w, "access denied for this role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
