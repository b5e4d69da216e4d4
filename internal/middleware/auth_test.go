package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vtube-api/pkg/logger"
)

const testSecret = "test-secret"

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	validClaims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "valid token",
			header:         "Bearer " + signToken(t, testSecret, validClaims),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong secret",
			header:         "Bearer " + signToken(t, "other-secret", validClaims),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "subject is not a uuid",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "bob",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing subject",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawUser bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, ok := UserFromContext(r.Context())
				sawUser = ok
				if ok {
					assert.Equal(t, userID, user.ID)
					assert.Equal(t, "alice", user.Username)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(testSecret, testLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, sawUser)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(RequestIDContextKey).(string)
		assert.True(t, ok)
		assert.NotEmpty(t, id)
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestID(testLogger())(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
