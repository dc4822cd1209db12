package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"medibook/utils"

	"go.uber.org/zap"
)

// DefaultChallengeService implements ChallengeService on a ChallengeStore.
type DefaultChallengeService struct {
	Store       ChallengeStore
	Dispatch    Dispatcher
	CodeLength  int
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

func NewChallengeService(store ChallengeStore, dispatch Dispatcher, codeLength int, ttl, cooldown time.Duration, maxAttempts int) *DefaultChallengeService {
	return &DefaultChallengeService{
		Store:       store,
		Dispatch:    dispatch,
		CodeLength:  codeLength,
		TTL:         ttl,
		Cooldown:    cooldown,
		MaxAttempts: maxAttempts,
	}
}

func (s *DefaultChallengeService) Issue(ctx context.Context, reservationID, contact string) (*Challenge, error) {
	code, err := generateNumericCode(s.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	now := time.Now()
	ch := Challenge{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.TTL),
	}

	// Put replaces any prior challenge, so a reissue invalidates the old
	// code in the same step.
	if err := s.Store.Put(ctx, reservationID, ch); err != nil {
		return nil, fmt.Errorf("failed to store otp challenge: %w", err)
	}
	if err := s.Store.MarkCooldown(ctx, reservationID, s.Cooldown); err != nil {
		utils.GetLogger().Warn("failed to mark otp cooldown",
			zap.String("reservationId", reservationID), zap.Error(err))
	}

	// Delivery is best effort; the challenge stays valid either way and the
	// caller can resend once the cooldown passes.
	if err := s.Dispatch.DispatchOTP(ctx, reservationID, contact, code); err != nil {
		utils.GetLogger().Warn("otp delivery dispatch failed",
			zap.String("reservationId", reservationID), zap.Error(err))
	}

	return &ch, nil
}

func (s *DefaultChallengeService) Verify(ctx context.Context, reservationID, code string) error {
	ch, err := s.Store.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	if time.Now().After(ch.ExpiresAt) {
		_ = s.Store.Delete(ctx, reservationID)
		return ErrExpired
	}

	if ch.Code != code {
		attempts, ierr := s.Store.IncrementAttempts(ctx, reservationID)
		if ierr != nil {
			utils.GetLogger().Warn("failed to count otp attempt",
				zap.String("reservationId", reservationID), zap.Error(ierr))
		}
		if ierr == nil && attempts >= s.MaxAttempts {
			// Attempt limit reached: retire the challenge so the correct
			// code can no longer be replayed; the caller must resend.
			_ = s.Store.Delete(ctx, reservationID)
		}
		return ErrMismatch
	}

	// Consume on success: the same code can never verify twice.
	if err := s.Store.Delete(ctx, reservationID); err != nil {
		return fmt.Errorf("failed to consume otp challenge: %w", err)
	}
	return nil
}

func (s *DefaultChallengeService) Resend(ctx context.Context, reservationID, contact string) (*Challenge, error) {
	remaining, err := s.Store.CooldownRemaining(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check otp cooldown: %w", err)
	}
	if remaining > 0 {
		return nil, &CooldownError{Remaining: remaining}
	}
	return s.Issue(ctx, reservationID, contact)
}

func (s *DefaultChallengeService) Invalidate(ctx context.Context, reservationID string) error {
	return s.Store.Delete(ctx, reservationID)
}

// generateNumericCode draws each digit uniformly from crypto/rand.
func generateNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
