package middleware

import (
	"net/http"

	"github.com/filevault/filevault/internal/ctxkeys"
	"github.com/filevault/filevault/internal/service"
)

// Auth resolves the X-Token header through the session store and stores
// the user id in the request context. Requests with a missing or invalid
// token continue anonymously; handlers decide whether that means 401 or
// 404.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Token")
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.UserID(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
