package http

import (
	"context"
	"net/http"
	"strings"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/observability/logging"
	"pollution-tracker/internal/observability/metrics"
	"pollution-tracker/internal/service"
)

type claimsKey struct{}

// BearerAuth rejects requests without a valid session token and stores the
// verified claims in the request context.
func BearerAuth(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := "success"
			defer func() {
				metrics.AuthenticationAttemptsTotal.WithLabelValues(result).Inc()
			}()
			log := logging.FromContext(r.Context())

			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, "Bearer ") {
				result = "failure"
				log.Warn("auth missing bearer", "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(raw[len("Bearer "):]))
			if err != nil {
				result = "failure"
				log.Warn("auth invalid token", "path", r.URL.Path, "error", err)
				writeMessage(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func ContextWithClaims(ctx context.Context, c *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*service.Claims)
	return c, ok && c != nil
}
