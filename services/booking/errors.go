package booking

import (
	"errors"
	"fmt"
	"time"
)

// Failure taxonomy returned by the booking service. Handlers map these onto
// HTTP statuses; nothing is swallowed.
var (
	// ErrInvalidRequest covers malformed ids, unparseable dates/times and
	// past-dated bookings. Not retryable as-is.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrSlotUnavailable means the slot reserve race was lost. The caller
	// should refresh availability and pick another slot.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrNotFound covers unknown reservations and missing OTP challenges.
	ErrNotFound = errors.New("reservation not found")
	// ErrOtpMismatch means the submitted code was wrong. Retryable up to
	// the attempt limit.
	ErrOtpMismatch = errors.New("otp code mismatch")
	// ErrOtpExpired means the challenge window passed; a resend is needed.
	ErrOtpExpired = errors.New("otp challenge expired")
	// ErrUnauthorized means the acting party is neither the owning patient
	// nor the assigned provider.
	ErrUnauthorized = errors.New("acting party not authorized")
	// ErrInvalidTransition means the status state machine rejected the
	// requested change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CooldownActiveError reports a throttled resend with the remaining wait so
// the client can decide whether to wait it out.
type CooldownActiveError struct {
	RetryAfter time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("resend cooldown active, retry in %s", e.RetryAfter.Round(time.Second))
}
