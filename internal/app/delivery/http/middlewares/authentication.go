package middlewares

import (
	"context"
	"fmt"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/exceptions"
	"mediconnect-service/internal/pkg/utils"
	"net/http"
)

// Authenticate resolves the caller's user id. Identity is established
// upstream by the API gateway, which forwards it in a trusted header;
// requests without it are rejected.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(constvars.HeaderXUserID)
		if userID == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.BuildNewCustomError(
				fmt.Errorf("missing %s header", constvars.HeaderXUserID),
				constvars.StatusUnauthorized,
				constvars.ErrClientNotAuthorized,
				constvars.ErrDevMissingUserIdentity,
			))
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_USER_ID_KEY, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(constvars.CONTEXT_USER_ID_KEY).(string)
	return userID
}
