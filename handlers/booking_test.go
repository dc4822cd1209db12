package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medibook/models"
	"medibook/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubBookingService returns canned results so handler tests exercise only
// the HTTP mapping.
type stubBookingService struct {
	slots []string
	res   *models.Reservation
	err   error
}

func (s *stubBookingService) AvailableSlots(ctx context.Context, providerID, date string) ([]string, error) {
	return s.slots, s.err
}

func (s *stubBookingService) CreateReservation(ctx context.Context, input booking.CreateReservationInput) (*models.Reservation, error) {
	return s.res, s.err
}

func (s *stubBookingService) Confirm(ctx context.Context, reservationID, code string) (*models.Reservation, error) {
	return s.res, s.err
}

func (s *stubBookingService) Resend(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return s.res, s.err
}

func (s *stubBookingService) Cancel(ctx context.Context, reservationID, actorID string) (*models.Reservation, error) {
	return s.res, s.err
}

func (s *stubBookingService) Complete(ctx context.Context, reservationID, actorID string) (*models.Reservation, error) {
	return s.res, s.err
}

func (s *stubBookingService) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return s.res, s.err
}

func (s *stubBookingService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, s.err
}

func newTestRouter(svc booking.BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBookingHandler(svc)
	api := r.Group("/api/booking")
	{
		api.GET("/slots", h.GetAvailableSlots)
		api.POST("/reservations", h.CreateReservation)
		api.GET("/reservations/:id", h.GetReservation)
		api.POST("/reservations/:id/confirm", h.ConfirmReservation)
		api.POST("/reservations/:id/resend", h.ResendCode)
		api.POST("/reservations/:id/cancel", h.CancelReservation)
		api.PATCH("/reservations/:id/status", h.UpdateReservationStatus)
	}
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetAvailableSlots(t *testing.T) {
	r := newTestRouter(&stubBookingService{slots: []string{"09:00", "09:30"}})

	w := doJSON(r, http.MethodGet, "/api/booking/slots?providerId=dr-1&date=2026-09-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "09:30")
}

func TestCreateReservationCreated(t *testing.T) {
	r := newTestRouter(&stubBookingService{res: &models.Reservation{ID: "r1", Status: models.StatusPending}})

	body := `{"providerId":"dr-1","patientId":"p1","contact":"+15550001","date":"2026-09-01","time":"09:00"}`
	w := doJSON(r, http.MethodPost, "/api/booking/reservations", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"pending"`)
}

func TestCreateReservationRejectsMissingFields(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	w := doJSON(r, http.MethodPost, "/api/booking/reservations", `{"providerId":"dr-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", booking.ErrInvalidRequest, http.StatusBadRequest},
		{"otp mismatch", booking.ErrOtpMismatch, http.StatusBadRequest},
		{"unauthorized", booking.ErrUnauthorized, http.StatusForbidden},
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"slot unavailable", booking.ErrSlotUnavailable, http.StatusConflict},
		{"invalid transition", booking.ErrInvalidTransition, http.StatusConflict},
		{"otp expired", booking.ErrOtpExpired, http.StatusGone},
		{"cooldown", &booking.CooldownActiveError{RetryAfter: 12 * time.Second}, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubBookingService{err: tc.err})
			w := doJSON(r, http.MethodPost, "/api/booking/reservations/r1/confirm", `{"code":"123456"}`)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCooldownResponseCarriesRetryAfter(t *testing.T) {
	r := newTestRouter(&stubBookingService{err: &booking.CooldownActiveError{RetryAfter: 12 * time.Second}})

	w := doJSON(r, http.MethodPost, "/api/booking/reservations/r1/resend", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after_seconds")
}

func TestUpdateStatusRejectsUnsupportedTarget(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	w := doJSON(r, http.MethodPatch, "/api/booking/reservations/r1/status", `{"actorId":"dr-1","status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
