package notification

import "context"

// Service delivers a one-time passcode to a patient contact. Delivery is an
// external collaborator concern; callers never roll back on failure.
type Service interface {
	SendOTP(ctx context.Context, contact, code string) error
}
