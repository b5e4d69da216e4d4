package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vtube-api/internal/domain"
	"vtube-api/internal/middleware"
	"vtube-api/internal/service"
	"vtube-api/pkg/errors"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/response"
)

// SubscriptionHandler handles subscription related requests
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	logger        *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        log,
	}
}

// Toggle handles POST /api/subscriptions/{channelId}
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	channelID, err := parsePathID(r, "channelId", "Invalid channel id")
	if err != nil {
		return err
	}

	result, err := h.subscriptions.Toggle(r.Context(), caller.ID, channelID)
	if err != nil {
		return err
	}

	message := "Channel unsubscribed successfully"
	if result.Subscribed {
		message = "Subscribed successfully"
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, result, message)
}

// ListSubscribers handles GET /api/subscriptions/{channelId}/subscribers
func (h *SubscriptionHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) error {
	channelID, err := parsePathID(r, "channelId", "Invalid channel id")
	if err != nil {
		return err
	}

	subscribers, err := h.subscriptions.ListSubscribers(r.Context(), channelID)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, subscribers, "Subscribers fetched successfully")
}

// CountSubscribed handles GET /api/subscriptions/subscribed
func (h *SubscriptionHandler) CountSubscribed(w http.ResponseWriter, r *http.Request) error {
	caller, err := callerFromContext(r)
	if err != nil {
		return err
	}

	count, err := h.subscriptions.CountSubscribed(r.Context(), caller.ID)
	if err != nil {
		return err
	}

	return response.WriteJSON(w, h.logger, http.StatusOK, count, "Subscribed channel count fetched successfully")
}

// callerFromContext returns the authenticated caller set by the auth middleware
func callerFromContext(r *http.Request) (*domain.AuthUser, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, errors.NewAuthenticationError("User not authenticated")
	}
	return user, nil
}

// parsePathID validates a path parameter as an entity reference
func parsePathID(r *http.Request, param, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, errors.NewValidationError(message)
	}
	return id, nil
}
