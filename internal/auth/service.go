package auth

import (
	"strings"
)

// Service resolves the caller identity from request credentials.
type Service struct {
	verifier TokenVerifier
}

// NewService constructs a new Service.
func NewService(verifier TokenVerifier) *Service {
	return &Service{verifier: verifier}
}

// Authenticate parses an Authorization header value and returns the principal
// id it carries. Authentication only; roles are checked by rbac.
func (s *Service) Authenticate(authHeader string) (string, error) {
	token, err := ExtractBearerToken(authHeader)
	if err != nil {
		return "", err
	}
	return s.verifier.Verify(token)
}

// ExtractBearerToken returns the token part of a "Bearer <token>" header.
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
