package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	challengeKeyPrefix = "otp:"
	cooldownKeyPrefix  = "otp:cd:"
	attemptsKeyPrefix  = "otp:att:"
)

// RedisChallengeStore keeps challenges in Redis with a TTL matching their
// expiry, so abandoned challenges clean themselves up.
type RedisChallengeStore struct {
	Client *redis.Client
}

func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{Client: client}
}

func (s *RedisChallengeStore) Put(ctx context.Context, reservationID string, ch Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal otp challenge: %w", err)
	}
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("otp challenge already expired at put time")
	}
	// The attempts counter shares the challenge TTL and resets with it.
	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, challengeKeyPrefix+reservationID, data, ttl)
	pipe.Set(ctx, attemptsKeyPrefix+reservationID, "0", ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisChallengeStore) Get(ctx context.Context, reservationID string) (*Challenge, error) {
	data, err := s.Client.Get(ctx, challengeKeyPrefix+reservationID).Result()
	if err == redis.Nil {
		return nil, ErrNoChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load otp challenge: %w", err)
	}
	var ch Challenge
	if err := json.Unmarshal([]byte(data), &ch); err != nil {
		return nil, fmt.Errorf("failed to parse otp challenge: %w", err)
	}
	return &ch, nil
}

func (s *RedisChallengeStore) IncrementAttempts(ctx context.Context, reservationID string) (int, error) {
	// INCR serializes concurrent wrong submissions on Redis itself.
	n, err := s.Client.Incr(ctx, attemptsKeyPrefix+reservationID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count otp attempt: %w", err)
	}
	return int(n), nil
}

func (s *RedisChallengeStore) Delete(ctx context.Context, reservationID string) error {
	return s.Client.Del(ctx, challengeKeyPrefix+reservationID, attemptsKeyPrefix+reservationID).Err()
}

func (s *RedisChallengeStore) MarkCooldown(ctx context.Context, reservationID string, window time.Duration) error {
	return s.Client.Set(ctx, cooldownKeyPrefix+reservationID, "1", window).Err()
}

func (s *RedisChallengeStore) CooldownRemaining(ctx context.Context, reservationID string) (time.Duration, error) {
	ttl, err := s.Client.PTTL(ctx, cooldownKeyPrefix+reservationID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read otp cooldown ttl: %w", err)
	}
	if ttl < 0 {
		// -1 no expiry, -2 missing key; neither blocks a resend.
		return 0, nil
	}
	return ttl, nil
}
