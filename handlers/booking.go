package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medibook/services/booking"
)

// BookingHandler exposes the booking service over HTTP.
type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// GetAvailableSlots returns the free slot times for a provider's day.
func (h *BookingHandler) GetAvailableSlots(c *gin.Context) {
	providerID := c.Query("providerId")
	date := c.Query("date")

	slots, err := h.Svc.AvailableSlots(c.Request.Context(), providerID, date)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId": providerID,
		"date":       date,
		"slots":      slots,
	})
}

// CreateReservation opens a pending reservation and triggers code delivery.
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	var input struct {
		ProviderID  string `json:"providerId" binding:"required"`
		PatientID   string `json:"patientId" binding:"required"`
		LocationID  string `json:"locationId"`
		SpecialtyID string `json:"specialtyId"`
		Contact     string `json:"contact" binding:"required"`
		Date        string `json:"date" binding:"required"`
		Time        string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Svc.CreateReservation(c.Request.Context(), booking.CreateReservationInput{
		ProviderID:  input.ProviderID,
		PatientID:   input.PatientID,
		LocationID:  input.LocationID,
		SpecialtyID: input.SpecialtyID,
		Contact:     input.Contact,
		Date:        input.Date,
		Time:        input.Time,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ConfirmReservation verifies the submitted code and confirms the booking.
func (h *BookingHandler) ConfirmReservation(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Svc.Confirm(c.Request.Context(), c.Param("id"), input.Code)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ResendCode re-issues the confirmation code, subject to the cooldown.
func (h *BookingHandler) ResendCode(c *gin.Context) {
	res, err := h.Svc.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelReservation cancels on behalf of the patient or provider.
func (h *BookingHandler) CancelReservation(c *gin.Context) {
	var input struct {
		ActorID string `json:"actorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"), input.ActorID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateReservationStatus handles provider-side status changes, currently
// only marking a confirmed reservation completed.
func (h *BookingHandler) UpdateReservationStatus(c *gin.Context) {
	var input struct {
		ActorID string `json:"actorId" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Status != "completed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported status", "details": input.Status})
		return
	}

	res, err := h.Svc.Complete(c.Request.Context(), c.Param("id"), input.ActorID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetReservation fetches one reservation by id.
func (h *BookingHandler) GetReservation(c *gin.Context) {
	res, err := h.Svc.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// respondBookingError maps service errors onto HTTP statuses.
func respondBookingError(c *gin.Context, err error) {
	var cooldown *booking.CooldownActiveError
	if errors.As(err, &cooldown) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "resend cooldown active",
			"retry_after_seconds": int(cooldown.RetryAfter.Seconds()) + 1,
		})
		return
	}

	switch {
	case errors.Is(err, booking.ErrInvalidRequest), errors.Is(err, booking.ErrOtpMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotUnavailable), errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrOtpExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
