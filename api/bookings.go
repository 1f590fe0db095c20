package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/elysium-stays/bookingledger/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID       string `json:"userId"`
	ProviderCode string `json:"authorizedProviderCode"`
	ResourceID   string `json:"resourceId"`
	Amount       uint64 `json:"bookingAmount"`
}

type createBookingResponse struct {
	Message         string `json:"message"`
	BookingID       string `json:"bookingId"`
	TransactionHash string `json:"transactionHash"`
}

type bookingResponse struct {
	BookingID       string `json:"bookingId"`
	UserID          string `json:"userId"`
	ProviderCode    string `json:"authorizedProviderCode"`
	ResourceID      string `json:"resourceId"`
	Amount          uint64 `json:"bookingAmount"`
	Status          string `json:"status"`
	TransactionHash string `json:"transactionHash"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.Engine) {
	router.GET("/", h.health)

	bookings := router.Group("/api/bookings")
	bookings.POST("", h.create)
	bookings.GET("/:id", h.get)
	bookings.PUT("/:id/confirm", h.transition(h.service.ConfirmBooking))
	bookings.PUT("/:id/cancel", h.transition(h.service.CancelBooking))
	bookings.PUT("/:id/dispute", h.transition(h.service.DisputeBooking))
	bookings.PUT("/:id/resolve", h.transition(h.service.ResolveBooking))
}

func (h *BookingHandler) health(c *gin.Context) {
	c.String(http.StatusOK, "Booking API is running...")
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking", "details": err.Error()})
		return
	}

	record, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:       req.UserID,
		ProviderCode: req.ProviderCode,
		ResourceID:   req.ResourceID,
		Amount:       req.Amount,
	})
	if err != nil {
		// The create route reports every failure the same way, status 500
		// with the reason in details. Per-kind statuses are reserved for the
		// read and transition routes.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, createBookingResponse{
		Message:         "Booking transaction submitted successfully",
		BookingID:       record.BookingID.String(),
		TransactionHash: record.TransactionHash,
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	bookingID, err := domain.ParseBookingID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(record))
}

func (h *BookingHandler) transition(op func(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := domain.ParseBookingID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		record, err := op(c.Request.Context(), bookingID)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, toBookingResponse(record))
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toBookingResponse(record *domain.BookingRecord) bookingResponse {
	return bookingResponse{
		BookingID:       record.BookingID.String(),
		UserID:          record.UserID,
		ProviderCode:    record.ProviderCode,
		ResourceID:      record.ResourceID,
		Amount:          record.Amount,
		Status:          record.Status.String(),
		TransactionHash: record.TransactionHash,
		CreatedAt:       record.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       record.UpdatedAt.Format(time.RFC3339),
	}
}
