package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationRepo "medibook/database/repository/reservation"
	scheduleRepo "medibook/database/repository/schedule"
	"medibook/models"
	"medibook/services/otp"
	"medibook/utils"

	"github.com/google/uuid"
)

// AvailableSlots returns the free slot time labels for the provider's day,
// materializing the day grid on first access.
func (s *DefaultBookingService) AvailableSlots(ctx context.Context, providerID, date string) ([]string, error) {
	if providerID == "" || date == "" {
		return nil, fmt.Errorf("%w: provider and date are required", ErrInvalidRequest)
	}
	past, err := models.IsPastDate(date, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidRequest, date)
	}
	if past {
		return nil, fmt.Errorf("%w: date %s is in the past", ErrInvalidRequest, date)
	}
	if _, err := s.Schedules.GetOrCreateDay(ctx, providerID, date, s.Template); err != nil {
		return nil, fmt.Errorf("failed to load day schedule: %w", err)
	}
	free, err := s.Schedules.ListFree(ctx, providerID, date)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrPastDate) {
			return nil, fmt.Errorf("%w: date %s is in the past", ErrInvalidRequest, date)
		}
		return nil, fmt.Errorf("failed to list free slots: %w", err)
	}
	return free, nil
}

// CreateReservation claims the slot, persists a pending reservation and issues
// its confirmation challenge. The slot is held from this moment; losing it
// again requires confirmation expiry or cancellation.
func (s *DefaultBookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error) {
	logger := utils.GetLogger().Sugar()

	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	now := time.Now()
	past, err := models.IsPastDate(input.Date, now)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidRequest, input.Date)
	}
	if past {
		return nil, fmt.Errorf("%w: date %s is in the past", ErrInvalidRequest, input.Date)
	}
	startsAt, err := models.CombineDateTime(input.Date, input.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: bad time %q", ErrInvalidRequest, input.Time)
	}

	// Cheap pre-check; the slot reserve below is the real arbiter.
	taken, err := s.Reservations.ActiveExists(ctx, input.ProviderID, input.Date, input.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reservations: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s %s already booked", ErrSlotUnavailable, input.Date, input.Time)
	}

	if _, err := s.Schedules.GetOrCreateDay(ctx, input.ProviderID, input.Date, s.Template); err != nil {
		return nil, fmt.Errorf("failed to load day schedule: %w", err)
	}

	reservationID := uuid.New().String()
	if err := s.Schedules.Reserve(ctx, input.ProviderID, input.Date, input.Time, reservationID); err != nil {
		switch {
		case errors.Is(err, scheduleRepo.ErrUnknownSlot):
			return nil, fmt.Errorf("%w: %s is not a bookable time", ErrInvalidRequest, input.Time)
		case errors.Is(err, scheduleRepo.ErrSlotTaken):
			return nil, fmt.Errorf("%w: %s %s already booked", ErrSlotUnavailable, input.Date, input.Time)
		default:
			return nil, fmt.Errorf("failed to reserve slot: %w", err)
		}
	}

	res := &models.Reservation{
		ID:          reservationID,
		ProviderID:  input.ProviderID,
		PatientID:   input.PatientID,
		LocationID:  input.LocationID,
		SpecialtyID: input.SpecialtyID,
		Contact:     input.Contact,
		Date:        input.Date,
		Time:        input.Time,
		StartsAt:    startsAt,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Reservations.Create(ctx, res); err != nil {
		s.releaseSlot(ctx, res)
		return nil, fmt.Errorf("failed to persist reservation: %w", err)
	}

	ch, err := s.Challenges.Issue(ctx, reservationID, input.Contact)
	if err != nil {
		// Unwind: the patient never got a code, so the hold cannot be confirmed.
		s.releaseSlot(ctx, res)
		if derr := s.Reservations.Delete(ctx, reservationID); derr != nil {
			logger.Errorf("Failed to roll back reservation %s: %v", reservationID, derr)
		}
		return nil, fmt.Errorf("failed to issue confirmation code: %w", err)
	}
	res.OTPExpiresAt = &ch.ExpiresAt
	if err := s.Reservations.UpdateOTPExpiry(ctx, reservationID, ch.ExpiresAt); err != nil {
		// Without the deadline on record the sweep can never reclaim this
		// booking, so the hold must not survive the failure.
		s.releaseSlot(ctx, res)
		if derr := s.Reservations.Delete(ctx, reservationID); derr != nil {
			logger.Errorf("Failed to roll back reservation %s: %v", reservationID, derr)
		}
		if ierr := s.Challenges.Invalidate(ctx, reservationID); ierr != nil {
			logger.Warnf("Failed to drop challenge for %s: %v", reservationID, ierr)
		}
		return nil, fmt.Errorf("failed to record confirmation deadline: %w", err)
	}

	logger.Infof("Reservation %s pending for provider %s at %s %s", reservationID, input.ProviderID, input.Date, input.Time)
	return res, nil
}

// Confirm verifies the submitted passcode and promotes the reservation from
// pending to confirmed.
func (s *DefaultBookingService) Confirm(ctx context.Context, reservationID, code string) (*models.Reservation, error) {
	res, err := s.getByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, res.Status)
	}

	if err := s.Challenges.Verify(ctx, reservationID, code); err != nil {
		switch {
		case errors.Is(err, otp.ErrNoChallenge):
			// Exhausted attempts or expiry already retired the challenge.
			return nil, fmt.Errorf("%w: no live confirmation code", ErrNotFound)
		case errors.Is(err, otp.ErrExpired):
			return nil, ErrOtpExpired
		case errors.Is(err, otp.ErrMismatch):
			return nil, ErrOtpMismatch
		default:
			return nil, fmt.Errorf("failed to verify code: %w", err)
		}
	}

	ok, err := s.Reservations.UpdateStatus(ctx, reservationID, models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", err)
	}
	if !ok {
		// Lost a race with the sweeper or a cancel.
		return nil, fmt.Errorf("%w: reservation left pending state", ErrInvalidTransition)
	}

	utils.GetLogger().Sugar().Infof("Reservation %s confirmed", reservationID)
	return s.getByID(ctx, reservationID)
}

// Resend re-issues the confirmation code for a pending reservation, honoring
// the delivery cooldown.
func (s *DefaultBookingService) Resend(ctx context.Context, reservationID string) (*models.Reservation, error) {
	res, err := s.getByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, res.Status)
	}

	ch, err := s.Challenges.Resend(ctx, reservationID, res.Contact)
	if err != nil {
		var cd *otp.CooldownError
		if errors.As(err, &cd) {
			return nil, &CooldownActiveError{RetryAfter: cd.Remaining}
		}
		return nil, fmt.Errorf("failed to resend code: %w", err)
	}

	// Fresh code, fresh deadline; the sweeper keys off this field.
	if err := s.Reservations.UpdateOTPExpiry(ctx, reservationID, ch.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to extend confirmation window: %w", err)
	}
	res.OTPExpiresAt = &ch.ExpiresAt
	res.UpdatedAt = time.Now()
	return res, nil
}

// Cancel retires a pending or confirmed reservation and frees its slot. Only
// the booking patient or the provider may cancel.
func (s *DefaultBookingService) Cancel(ctx context.Context, reservationID, actorID string) (*models.Reservation, error) {
	res, err := s.getByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorID != res.PatientID && actorID != res.ProviderID {
		return nil, fmt.Errorf("%w: only the patient or provider may cancel", ErrUnauthorized)
	}
	if !models.CanTransition(res.Status, models.StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s reservation", ErrInvalidTransition, res.Status)
	}

	ok, err := s.Reservations.UpdateStatus(ctx, reservationID, res.Status, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: reservation changed state", ErrInvalidTransition)
	}

	s.releaseSlot(ctx, res)
	if err := s.Challenges.Invalidate(ctx, reservationID); err != nil {
		utils.GetLogger().Sugar().Warnf("Failed to drop challenge for %s: %v", reservationID, err)
	}

	utils.GetLogger().Sugar().Infof("Reservation %s cancelled by %s", reservationID, actorID)
	return s.getByID(ctx, reservationID)
}

// Complete marks a confirmed reservation as held. Provider only; the slot
// stays occupied since the consultation happened.
func (s *DefaultBookingService) Complete(ctx context.Context, reservationID, actorID string) (*models.Reservation, error) {
	res, err := s.getByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorID != res.ProviderID {
		return nil, fmt.Errorf("%w: only the provider may complete", ErrUnauthorized)
	}
	if !models.CanTransition(res.Status, models.StatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete a %s reservation", ErrInvalidTransition, res.Status)
	}

	ok, err := s.Reservations.UpdateStatus(ctx, reservationID, res.Status, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete reservation: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: reservation changed state", ErrInvalidTransition)
	}
	return s.getByID(ctx, reservationID)
}

// GetReservation fetches a single reservation by id.
func (s *DefaultBookingService) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	return s.getByID(ctx, reservationID)
}

// SweepExpired expires every pending reservation whose confirmation window
// has closed, freeing the held slots. Individual failures are logged and
// skipped so one bad record cannot wedge the sweep.
func (s *DefaultBookingService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	logger := utils.GetLogger().Sugar()

	stale, err := s.Reservations.ListExpiredPending(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired reservations: %w", err)
	}

	expired := 0
	for i := range stale {
		res := &stale[i]
		ok, err := s.Reservations.ExpireIfStale(ctx, res.ID, now)
		if err != nil {
			logger.Errorf("Sweep: failed to expire %s: %v", res.ID, err)
			continue
		}
		if !ok {
			// Confirmed, cancelled, or resent a fresh code since listing.
			continue
		}
		s.releaseSlot(ctx, res)
		if err := s.Challenges.Invalidate(ctx, res.ID); err != nil {
			logger.Warnf("Sweep: failed to drop challenge for %s: %v", res.ID, err)
		}
		expired++
	}
	if expired > 0 {
		logger.Infof("Sweep expired %d reservation(s)", expired)
	}
	return expired, nil
}

func (s *DefaultBookingService) getByID(ctx context.Context, reservationID string) (*models.Reservation, error) {
	if reservationID == "" {
		return nil, fmt.Errorf("%w: reservation id is required", ErrInvalidRequest)
	}
	res, err := s.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
		}
		return nil, fmt.Errorf("failed to fetch reservation: %w", err)
	}
	return res, nil
}

func (s *DefaultBookingService) releaseSlot(ctx context.Context, res *models.Reservation) {
	if err := s.Schedules.Release(ctx, res.ProviderID, res.Date, res.Time, res.ID); err != nil {
		utils.GetLogger().Sugar().Errorf("Failed to release slot %s %s for %s: %v", res.Date, res.Time, res.ID, err)
	}
}

func validateCreateInput(input CreateReservationInput) error {
	switch {
	case input.ProviderID == "":
		return fmt.Errorf("%w: provider id is required", ErrInvalidRequest)
	case input.PatientID == "":
		return fmt.Errorf("%w: patient id is required", ErrInvalidRequest)
	case input.Contact == "":
		return fmt.Errorf("%w: contact is required", ErrInvalidRequest)
	case input.Date == "" || input.Time == "":
		return fmt.Errorf("%w: date and time are required", ErrInvalidRequest)
	}
	if _, err := time.Parse(models.DateLayout, input.Date); err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidRequest, input.Date)
	}
	if _, err := time.Parse(models.TimeLayout, input.Time); err != nil {
		return fmt.Errorf("%w: bad time %q", ErrInvalidRequest, input.Time)
	}
	return nil
}
