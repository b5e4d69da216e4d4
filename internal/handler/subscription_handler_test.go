package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtube-api/internal/domain"
	"vtube-api/internal/middleware"
	"vtube-api/pkg/response"
)

// stubSubscriptionService records calls and returns canned values
type stubSubscriptionService struct {
	toggleCalls int
	subscribed  bool
	subscribers []domain.ChannelSubscriber
	count       int64
}

func (s *stubSubscriptionService) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (*domain.ToggleResult, error) {
	s.toggleCalls++
	return &domain.ToggleResult{Subscribed: s.subscribed}, nil
}

func (s *stubSubscriptionService) ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]domain.ChannelSubscriber, error) {
	return s.subscribers, nil
}

func (s *stubSubscriptionService) CountSubscribed(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscribedChannelCount, error) {
	return &domain.SubscribedChannelCount{Count: s.count}, nil
}

func subscriptionRouter(svc *stubSubscriptionService, caller *domain.AuthUser) *chi.Mux {
	log := testLogger()
	h := NewSubscriptionHandler(svc, log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.UserContextKey, caller)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/api/subscriptions/subscribed", response.Wrap(log, h.CountSubscribed))
	r.Post("/api/subscriptions/{channelId}", response.Wrap(log, h.Toggle))
	r.Get("/api/subscriptions/{channelId}/subscribers", response.Wrap(log, h.ListSubscribers))
	return r
}

func TestSubscriptionHandlerToggle(t *testing.T) {
	caller := &domain.AuthUser{ID: uuid.New(), Username: "alice"}
	channelID := uuid.New()

	t.Run("subscribe", func(t *testing.T) {
		svc := &stubSubscriptionService{subscribed: true}
		router := subscriptionRouter(svc, caller)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscriptions/"+channelID.String(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.toggleCalls)

		var resp struct {
			Data    domain.ToggleResult `json:"data"`
			Success bool                `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, resp.Data.Subscribed)
	})

	t.Run("invalid channel id fails before the service", func(t *testing.T) {
		svc := &stubSubscriptionService{}
		router := subscriptionRouter(svc, caller)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscriptions/nope", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, svc.toggleCalls)
	})
}

func TestSubscriptionHandlerCountSubscribed(t *testing.T) {
	caller := &domain.AuthUser{ID: uuid.New()}

	t.Run("zero subscriptions is a valid count", func(t *testing.T) {
		svc := &stubSubscriptionService{count: 0}
		router := subscriptionRouter(svc, caller)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subscriptions/subscribed", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data domain.SubscribedChannelCount `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Zero(t, resp.Data.Count)
	})
}

func TestSubscriptionHandlerListSubscribers(t *testing.T) {
	caller := &domain.AuthUser{ID: uuid.New()}
	channelID := uuid.New()

	svc := &stubSubscriptionService{
		subscribers: []domain.ChannelSubscriber{
			{
				Subscriber:             domain.UserProfile{ID: uuid.New(), Username: "bob"},
				SubscribedToSubscriber: true,
				SubscribersCount:       3,
			},
			{
				Subscriber:       domain.UserProfile{ID: uuid.New(), Username: "carol"},
				SubscribersCount: 0,
			},
		},
	}
	router := subscriptionRouter(svc, caller)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subscriptions/"+channelID.String()+"/subscribers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.ChannelSubscriber `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].SubscribedToSubscriber)
	assert.Equal(t, int64(3), resp.Data[0].SubscribersCount)
	assert.False(t, resp.Data[1].SubscribedToSubscriber)
}
