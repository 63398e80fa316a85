/**
 * @description
 * This file sets up the HTTP router for the swap-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SwapRoutes creates and returns a new router for the swap service.
func SwapRoutes(h *SwapHandlers, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		// Apply JWT authentication middleware for production
		r.Use(ClerkAuthMiddleware(jwksURL))

		// Swap lifecycle endpoints
		r.Post("/swaps", h.CreateSwapHandler)
		r.Get("/swaps", h.ListSwapsHandler)
		r.Get("/swaps/{swapID}", h.GetSwapHandler)
		r.Post("/swaps/{swapID}/accept", h.AcceptSwapHandler)
		r.Post("/swaps/{swapID}/decline", h.DeclineSwapHandler)
		r.Post("/swaps/{swapID}/cancel", h.CancelSwapHandler)
		r.Post("/swaps/{swapID}/complete", h.CompleteSwapHandler)
		r.Post("/swaps/{swapID}/submit", h.SubmitForReviewHandler)
		r.Post("/swaps/{swapID}/review", h.ReviewSwapHandler)

		// Conversation log endpoints
		r.Get("/swaps/{swapID}/messages", h.ListMessagesHandler)
		r.Post("/swaps/{swapID}/messages", h.SendMessageHandler)

		// Profile and economy endpoints
		r.Get("/me", h.GetProfileHandler)
		r.Post("/me/free-coin", h.ClaimFreeCoinHandler)

		// Notification endpoints
		r.Get("/notifications", h.ListNotificationsHandler)
		r.Post("/notifications/{notificationID}/read", h.MarkNotificationReadHandler)
	})

	return r
}
