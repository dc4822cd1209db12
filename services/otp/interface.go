package otp

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoChallenge is returned when no live challenge exists for the reservation.
	ErrNoChallenge = errors.New("no live otp challenge")
	// ErrMismatch is returned when the submitted code differs from the issued one.
	ErrMismatch = errors.New("otp code mismatch")
	// ErrExpired is returned when the challenge window has passed.
	ErrExpired = errors.New("otp challenge expired")
)

// CooldownError reports how long the caller must wait before a resend.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("otp resend cooldown active, retry in %s", e.Remaining.Round(time.Second))
}

// Challenge is the state of one outstanding passcode, keyed by its
// reservation. At most one live challenge exists per reservation; issuing a
// new one replaces whatever was there. The failed-attempt count lives in the
// store, not here, so concurrent submissions increment one counter.
type Challenge struct {
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChallengeService issues, verifies and retires one-time passcodes bound to
// reservations.
type ChallengeService interface {
	// Issue creates a fresh challenge, replacing any prior one, and hands
	// the code to the delivery dispatcher. Delivery failure does not undo
	// issuance; the code stays valid for verification and resend.
	Issue(ctx context.Context, reservationID, contact string) (*Challenge, error)
	// Verify consumes the challenge on success. Wrong codes count against
	// the attempt limit; exhausting it retires the challenge early.
	Verify(ctx context.Context, reservationID, code string) error
	// Resend re-issues unless the cooldown window is still open, in which
	// case it fails with a CooldownError carrying the remaining wait.
	Resend(ctx context.Context, reservationID, contact string) (*Challenge, error)
	// Invalidate drops the challenge, if any. Called on terminal
	// reservation transitions.
	Invalidate(ctx context.Context, reservationID string) error
}

// ChallengeStore is the keyed, TTL-bearing persistence behind the service.
type ChallengeStore interface {
	// Put stores ch under reservationID with a TTL matching its expiry,
	// replacing any existing challenge.
	Put(ctx context.Context, reservationID string, ch Challenge) error
	// Get returns the live challenge or ErrNoChallenge.
	Get(ctx context.Context, reservationID string) (*Challenge, error)
	// IncrementAttempts atomically bumps the failed-attempt counter and
	// returns the new count. Issuing a fresh challenge resets it.
	IncrementAttempts(ctx context.Context, reservationID string) (int, error)
	// Delete removes the challenge; deleting a missing one is a no-op.
	Delete(ctx context.Context, reservationID string) error
	// MarkCooldown opens a resend cooldown window for the reservation.
	MarkCooldown(ctx context.Context, reservationID string, window time.Duration) error
	// CooldownRemaining reports how much of the window is left; zero when
	// no cooldown is active.
	CooldownRemaining(ctx context.Context, reservationID string) (time.Duration, error)
}

// Dispatcher hands a freshly issued code off for out-of-band delivery.
type Dispatcher interface {
	DispatchOTP(ctx context.Context, reservationID, contact, code string) error
}
