/**
 * @description
 * This file contains the HTTP handlers for the swap-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the swap lifecycle engine.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/swaply/swap-service/internal/app"
	"github.com/swaply/swap-service/internal/domain"
	"github.com/swaply/swap-service/internal/store"
)

// SwapHandlers holds the application service that handlers will use.
type SwapHandlers struct {
	service *app.Service
}

// NewSwapHandlers creates a new instance of SwapHandlers.
func NewSwapHandlers(service *app.Service) *SwapHandlers {
	return &SwapHandlers{service: service}
}

// swapResponse wraps a swap with a human-readable status message. It mirrors
// the structure the mobile client expects so the frontend can read the swap
// state without additional transformation.
type swapResponse struct {
	Swap    *domain.Swap `json:"swap"`
	Message string       `json:"message"`
}

// freeCoinResponse reports the outcome of a free coin claim.
type freeCoinResponse struct {
	Granted      bool         `json:"granted"`
	User         *domain.User `json:"user"`
	NextFreeCoin *string      `json:"next_free_coin_date,omitempty"`
}

// resolveCaller extracts the authenticated subject from the request context
// and resolves it to the internal user UUID. It writes the error response
// itself and returns false when the caller cannot be identified.
func (h *SwapHandlers) resolveCaller(w http.ResponseWriter, r *http.Request, endpoint string) (uuid.UUID, bool) {
	subject, ok := GetAuthSubject(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get auth subject from context")
		return uuid.Nil, false
	}

	internalIDStr, err := h.service.ResolveInternalUserID(r.Context(), subject)
	if err != nil {
		log.Printf("level=warn component=api endpoint=%s outcome=reject reason=user_resolution_failed subject=%s err=%v", endpoint, subject, err)
		h.writeError(w, http.StatusBadRequest, "User not found")
		return uuid.Nil, false
	}

	callerID, err := uuid.Parse(internalIDStr)
	if err != nil {
		log.Printf("level=warn component=api endpoint=%s outcome=reject reason=invalid_user_id internal_user_id=%s", endpoint, internalIDStr)
		h.writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return callerID, true
}

// swapIDFromURL parses the {swapID} path parameter.
func (h *SwapHandlers) swapIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	swapID, err := uuid.Parse(chi.URLParam(r, "swapID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid swap ID")
		return uuid.Nil, false
	}
	return swapID, true
}

// writeServiceError maps engine errors onto HTTP status codes.
func (h *SwapHandlers) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	var busy *store.UserBusyError
	var limited *app.RateLimitedError

	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.As(err, &busy):
		h.writeError(w, http.StatusConflict, busy.Error())
	case errors.Is(err, store.ErrInvalidTransition):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfterSeconds))
		h.writeError(w, http.StatusTooManyRequests, limited.Error())
	case errors.Is(err, app.ErrForbidden):
		h.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrSwapNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSkillNotFound),
		errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, store.ErrNotificationNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrSelfSwap),
		errors.Is(err, app.ErrItemOwnership),
		errors.Is(err, app.ErrInvalidRating),
		errors.Is(err, app.ErrEmptyMessage):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("level=error component=api endpoint=%s msg=\"unhandled service error\" err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// CreateSwapHandler handles requests to initiate a new swap.
func (h *SwapHandlers) CreateSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "create_swap")
	if !ok {
		return
	}

	var req domain.CreateSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_swap outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	swap, err := h.service.CreateSwap(r.Context(), callerID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_swap outcome=failed requester_id=%s err=%v", callerID, err)
		h.writeServiceError(w, "create_swap", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, swapResponse{Swap: swap, Message: "Swap request sent"})
}

// ListSwapsHandler returns every swap the caller participates in.
func (h *SwapHandlers) ListSwapsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "list_swaps")
	if !ok {
		return
	}

	swaps, err := h.service.ListSwaps(r.Context(), callerID)
	if err != nil {
		h.writeServiceError(w, "list_swaps", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"swaps": swaps})
}

// GetSwapHandler returns a single swap with its conversation log.
func (h *SwapHandlers) GetSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "get_swap")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	swap, err := h.service.GetSwap(r.Context(), callerID, swapID)
	if err != nil {
		h.writeServiceError(w, "get_swap", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swap)
}

// AcceptSwapHandler handles the receiver accepting a pending swap.
func (h *SwapHandlers) AcceptSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "accept_swap")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	swap, err := h.service.AcceptSwap(r.Context(), callerID, swapID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=accept_swap outcome=failed swap_id=%s caller_id=%s err=%v", swapID, callerID, err)
		h.writeServiceError(w, "accept_swap", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swapResponse{Swap: swap, Message: "Swap accepted"})
}

// DeclineSwapHandler handles the receiver declining a pending swap.
func (h *SwapHandlers) DeclineSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "decline_swap")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	swap, err := h.service.DeclineSwap(r.Context(), callerID, swapID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=decline_swap outcome=failed swap_id=%s caller_id=%s err=%v", swapID, callerID, err)
		h.writeServiceError(w, "decline_swap", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swapResponse{Swap: swap, Message: "Swap declined"})
}

// CancelSwapHandler handles the requester cancelling their own pending swap.
func (h *SwapHandlers) CancelSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "cancel_swap")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	swap, err := h.service.CancelSwap(r.Context(), callerID, swapID)
	if err != nil {
		log.Printf("level=warn component=api endpoint=cancel_swap outcome=failed swap_id=%s caller_id=%s err=%v", swapID, callerID, err)
		h.writeServiceError(w, "cancel_swap", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swapResponse{Swap: swap, Message: "Swap cancelled"})
}

// CompleteSwapHandler finalizes an accepted skill swap in a single step.
func (h *SwapHandlers) CompleteSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "complete_swap")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	var req domain.CompleteSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=complete_swap outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	swap, err := h.service.CompleteDirect(r.Context(), callerID, swapID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=complete_swap outcome=failed swap_id=%s caller_id=%s err=%v", swapID, callerID, err)
		h.writeServiceError(w, "complete_swap", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swapResponse{Swap: swap, Message: "Swap completed"})
}

// SubmitForReviewHandler moves an accepted project swap into review with the
// delivered work attached.
func (h *SwapHandlers) SubmitForReviewHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "submit_for_review")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	var req domain.CompleteSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=submit_for_review outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	swap, err := h.service.SubmitForReview(r.Context(), callerID, swapID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=submit_for_review outcome=failed swap_id=%s caller_id=%s err=%v", swapID, callerID, err)
		h.writeServiceError(w, "submit_for_review", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swapResponse{Swap: swap, Message: "Submitted for review"})
}

// ReviewSwapHandler records the requester's review and finalizes the swap.
func (h *SwapHandlers) ReviewSwapHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "review_swap")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	var req domain.ReviewSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=review_swap outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	swap, err := h.service.ReviewSwap(r.Context(), callerID, swapID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=review_swap outcome=failed swap_id=%s caller_id=%s err=%v", swapID, callerID, err)
		h.writeServiceError(w, "review_swap", err)
		return
	}
	h.writeJSON(w, http.StatusOK, swapResponse{Swap: swap, Message: "Review recorded, swap completed"})
}

// SendMessageHandler appends a chat message to a swap's conversation log.
func (h *SwapHandlers) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "send_message")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=send_message outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	msg, err := h.service.SendMessage(r.Context(), callerID, swapID, req)
	if err != nil {
		h.writeServiceError(w, "send_message", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, msg)
}

// ListMessagesHandler returns a swap's full conversation log.
func (h *SwapHandlers) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "list_messages")
	if !ok {
		return
	}
	swapID, ok := h.swapIDFromURL(w, r)
	if !ok {
		return
	}

	swap, err := h.service.GetSwap(r.Context(), callerID, swapID)
	if err != nil {
		h.writeServiceError(w, "list_messages", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"messages": swap.Messages})
}

// GetProfileHandler returns the caller's profile with coins, points, and badges.
func (h *SwapHandlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "get_profile")
	if !ok {
		return
	}

	user, err := h.service.GetProfile(r.Context(), callerID)
	if err != nil {
		h.writeServiceError(w, "get_profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// ClaimFreeCoinHandler grants the caller's periodic free coin when due.
func (h *SwapHandlers) ClaimFreeCoinHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "claim_free_coin")
	if !ok {
		return
	}

	user, granted, err := h.service.ClaimFreeCoin(r.Context(), callerID)
	if err != nil {
		h.writeServiceError(w, "claim_free_coin", err)
		return
	}

	resp := freeCoinResponse{Granted: granted, User: user}
	if !user.NextFreeCoinDate.IsZero() {
		next := user.NextFreeCoinDate.Format("2006-01-02")
		resp.NextFreeCoin = &next
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ListNotificationsHandler returns the caller's notifications, newest first.
func (h *SwapHandlers) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "list_notifications")
	if !ok {
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), callerID)
	if err != nil {
		h.writeServiceError(w, "list_notifications", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// MarkNotificationReadHandler flags one of the caller's notifications as read.
func (h *SwapHandlers) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.resolveCaller(w, r, "mark_notification_read")
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "notificationID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.service.MarkNotificationRead(r.Context(), callerID, notificationID); err != nil {
		h.writeServiceError(w, "mark_notification_read", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// writeJSON is a helper for writing JSON responses.
func (h *SwapHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *SwapHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
