package auth

import (
	"log/slog"
	"net/http"

	"github.com/bancharampur/infogate/internal/platform/httpx"
	"github.com/bancharampur/infogate/internal/shared"
)

// Middleware rejects requests without a valid bearer token and stores the
// principal id in the request context.
func (s *Service) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID, err := s.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				if logger != nil {
					logger.Warn("authenticate request", slog.String("path", r.URL.Path), slog.Any("error", err))
				}
				httpx.Fail(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principalID)))
		})
	}
}
