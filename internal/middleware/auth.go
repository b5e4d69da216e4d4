package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/response"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for user information in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Auth creates an authentication middleware validating HS256 bearer tokens
// issued by the identity service and injecting the caller into the context.
func Auth(jwtSecret string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteError(w, logger, errors.NewAuthenticationError("Authorization header is required"))
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteError(w, logger, errors.NewAuthenticationError("Invalid authorization header format"))
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				response.WriteError(w, logger, errors.NewAuthenticationError("Token is required"))
				return
			}

			user, err := parseToken(token, jwtSecret)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				response.WriteError(w, logger, errors.NewAuthenticationError("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			r = r.WithContext(ctx)

			logger.WithField("user_id", user.ID).Debug("User authenticated successfully")

			next.ServeHTTP(w, r)
		})
	}
}

// parseToken validates the token signature and extracts the caller identity
func parseToken(tokenString, secret string) (*domain.AuthUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token missing subject")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a valid user id: %w", err)
	}

	username, _ := claims["username"].(string)

	return &domain.AuthUser{ID: userID, Username: username}, nil
}

// UserFromContext returns the authenticated caller, if any
func UserFromContext(ctx context.Context) (*domain.AuthUser, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.AuthUser)
	return user, ok
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}
