// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"
	"log"
	"time"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no reservation exists for the given id.
var ErrNotFound = errors.New("reservation not found")

// ReservationRepository persists reservations. Status changes go through
// UpdateStatus, which is conditional on the expected current status so
// concurrent transitions on one reservation have exactly one winner.
type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) error
	// Delete removes a reservation record. Only used to roll back a
	// creation whose follow-up steps failed; settled reservations are
	// never physically deleted.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// ActiveExists reports whether a pending or confirmed reservation
	// already targets the (provider, date, time) triple.
	ActiveExists(ctx context.Context, providerID, date, timeOfDay string) (bool, error)
	// UpdateStatus applies from → to and the bookkeeping that goes with the
	// target state (verified flag, challenge expiry field). Returns false
	// when the reservation was not in the expected from status.
	UpdateStatus(ctx context.Context, id string, from, to models.Status) (bool, error)
	// UpdateOTPExpiry moves the pending reservation's challenge deadline,
	// used when a fresh code is issued.
	UpdateOTPExpiry(ctx context.Context, id string, expiresAt time.Time) error
	// ExpireIfStale moves a pending reservation to expired only while its
	// challenge deadline is still before now. Returns false when the
	// reservation moved on or its deadline was refreshed by a resend.
	ExpireIfStale(ctx context.Context, id string, now time.Time) (bool, error)
	// ListExpiredPending returns pending reservations whose challenge
	// expiry has passed as of now.
	ListExpiredPending(ctx context.Context, now time.Time) ([]models.Reservation, error)
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo constructs a MongoDB-backed ReservationRepository.
func NewMongoReservationRepo(dbName string) ReservationRepository {
	db := database.MongoClient.Database(dbName)
	repo := &mongoReservationRepo{
		coll: db.Collection("reservations"),
	}
	if err := repo.ensureIndexes(); err != nil {
		log.Fatalf("failed to create reservation indexes: %v", err)
	}
	return repo
}
