package middleware

import (
	"net/http"
	"strings"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/i18n"
)

// Auth attaches the bearer token's user to the context. Requests without a
// valid token pass through anonymous and are stopped by RequireRole.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUser(r.Context(), auth.UserContext{
				UserID:   claims.UserID,
				RoleName: claims.RoleName,
				Locale:   claims.Locale,
			})
			if claims.Locale != "" {
				ctx = i18n.WithLocale(ctx, claims.Locale)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
