package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clinic-booking/internal/domain/repository"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	TokenIDKey   contextKey = "token_id"
)

var (
	errMissingHeader = errors.New("authorization header is required")
	errBadHeader     = errors.New("invalid authorization header format")
	errRevokedToken  = errors.New("token has been revoked")
)

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	sessionRepo repository.SessionRepository
	log         *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, sessionRepo repository.SessionRepository, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		sessionRepo: sessionRepo,
		log:         log,
	}
}

// Authenticate requires a live bearer token. A missing or malformed header is 401; a
// token that fails validation or was revoked is 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(r)
		if err != nil {
			switch {
			case errors.Is(err, errMissingHeader):
				response.Unauthorized(w, "Authorization header is required")
			case errors.Is(err, errBadHeader):
				response.Unauthorized(w, "Invalid authorization header format")
			case errors.Is(err, jwt.ErrInvalidToken):
				response.Forbidden(w, "Invalid or expired token")
			case errors.Is(err, errRevokedToken):
				response.Forbidden(w, "Token has been revoked")
			default:
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuthenticate attaches the principal when a live token is presented and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(r)
		if err != nil {
			if !errors.Is(err, errMissingHeader) {
				m.log.WithField("path", r.URL.Path).Debugf("Ignoring unusable token: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*jwt.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, errBadHeader
	}

	claims, err := m.jwtService.ValidateToken(parts[1])
	if err != nil {
		return nil, err
	}

	// Check if token exists in Redis (not revoked)
	exists, err := m.sessionRepo.Exists(r.Context(), claims.Principal().Subject(), claims.TokenID)
	if err != nil {
		m.log.Warnf("Failed to check session: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, errRevokedToken
	}

	return claims, nil
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, PrincipalKey, claims.Principal())
	return context.WithValue(ctx, TokenIDKey, claims.TokenID)
}

// WithPrincipal attaches a principal to ctx, for callers outside the HTTP chain.
func WithPrincipal(ctx context.Context, p jwt.Principal, tokenID string) context.Context {
	ctx = context.WithValue(ctx, PrincipalKey, p)
	return context.WithValue(ctx, TokenIDKey, tokenID)
}

// GetPrincipalFromContext extracts the authenticated principal from context
func GetPrincipalFromContext(ctx context.Context) (jwt.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(jwt.Principal)
	return p, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}
