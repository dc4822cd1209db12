package booking

import (
	"context"
	"time"

	reservationRepo "medibook/database/repository/reservation"
	scheduleRepo "medibook/database/repository/schedule"
	"medibook/models"
	"medibook/services/otp"
)

// CreateReservationInput carries everything needed to open a booking.
// Location and specialty are opaque tags recorded on the reservation.
type CreateReservationInput struct {
	ProviderID  string
	PatientID   string
	LocationID  string
	SpecialtyID string
	Contact     string // OTP delivery address (phone number)
	Date        string // "YYYY-MM-DD"
	Time        string // "HH:MM" slot label
}

// BookingService is the use-case layer composing the slot calendar, the
// reservation store and the OTP challenge service.
type BookingService interface {
	AvailableSlots(ctx context.Context, providerID, date string) ([]string, error)
	CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error)
	Confirm(ctx context.Context, reservationID, code string) (*models.Reservation, error)
	Resend(ctx context.Context, reservationID string) (*models.Reservation, error)
	Cancel(ctx context.Context, reservationID, actorID string) (*models.Reservation, error)
	Complete(ctx context.Context, reservationID, actorID string) (*models.Reservation, error)
	GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error)
	// SweepExpired expires pending reservations whose challenge window has
	// passed and frees their slots. Returns how many were expired.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Schedules    scheduleRepo.ScheduleRepository
	Reservations reservationRepo.ReservationRepository
	Challenges   otp.ChallengeService
	// Template is the fixed working-day slot grid every new provider-day
	// is materialized from.
	Template []models.Slot
}

func NewBookingService(
	schedules scheduleRepo.ScheduleRepository,
	reservations reservationRepo.ReservationRepository,
	challenges otp.ChallengeService,
	blocks []models.WorkBlock,
	slotMinutes int,
) *DefaultBookingService {
	return &DefaultBookingService{
		Schedules:    schedules,
		Reservations: reservations,
		Challenges:   challenges,
		Template:     models.BuildDaySlots(blocks, slotMinutes),
	}
}
