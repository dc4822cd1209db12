package models

import "time"

// Status is the reservation lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Reservation is the durable record of one booking attempt.
type Reservation struct {
	ID           string     `bson:"id" json:"id"`
	ProviderID   string     `bson:"providerId" json:"providerId"`
	PatientID    string     `bson:"patientId" json:"patientId"`
	LocationID   string     `bson:"locationId,omitempty" json:"locationId,omitempty"`
	SpecialtyID  string     `bson:"specialtyId,omitempty" json:"specialtyId,omitempty"`
	Contact      string     `bson:"contact" json:"-"` // OTP delivery address, not exposed
	Date         string     `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time         string     `bson:"time" json:"time"` // "HH:MM" slot label
	StartsAt     time.Time  `bson:"startsAt" json:"startsAt"`
	Status       Status     `bson:"status" json:"status"`
	Verified     bool       `bson:"verified" json:"verified"`
	OTPExpiresAt *time.Time `bson:"otpExpiresAt,omitempty" json:"-"` // set while pending, drives the expiry sweep
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// AllowedTransitions represents the reservation state flow as code. Every
// mutating entry point consults this table; nothing else decides legality.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from → to is a legal status change.
func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func (s Status) IsTerminal() bool {
	return len(AllowedTransitions[s]) == 0
}

// IsActive reports whether the reservation still holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}
