package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
)

// RequirePermissions creates a middleware that checks if user has any of the required permissions
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			hasPermission := false
			for _, requiredPerm := range permissions {
				if user.HasPermission(requiredPerm) {
					hasPermission = true
					break
				}
			}

			if !hasPermission {
				slog.Warn("access denied: user lacks required permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
