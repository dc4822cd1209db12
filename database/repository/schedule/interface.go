// File: database/repository/schedule/interface.go
package scheduleRepo

import (
	"context"
	"errors"
	"log"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrPastDate is returned when a day in the past is queried.
	ErrPastDate = errors.New("schedule date is in the past")
	// ErrUnknownSlot is returned when the time label is not part of the day grid.
	ErrUnknownSlot = errors.New("slot time not in day schedule")
	// ErrSlotTaken is returned when a reserve loses the race for an occupied slot.
	ErrSlotTaken = errors.New("slot already reserved")
)

// ScheduleRepository owns the bookable slot grid of every (provider, date)
// pair. Occupancy is mutated only through Reserve and Release.
type ScheduleRepository interface {
	// GetOrCreateDay returns the day grid, synthesizing it from template on
	// first access. Idempotent; the slot set never changes after creation.
	GetOrCreateDay(ctx context.Context, providerID, date string, template []models.Slot) (*models.DaySchedule, error)
	// ListFree returns the unoccupied slot time labels, in grid order.
	// Days before the caller's today fail with ErrPastDate.
	ListFree(ctx context.Context, providerID, date string) ([]string, error)
	// Reserve atomically marks the slot occupied by reservationID. Exactly
	// one of any set of concurrent callers succeeds; losers get ErrSlotTaken.
	Reserve(ctx context.Context, providerID, date, timeOfDay, reservationID string) error
	// Release clears occupancy only if the slot is held by reservationID;
	// anything else is a no-op.
	Release(ctx context.Context, providerID, date, timeOfDay, reservationID string) error
}

type mongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo constructs a MongoDB-backed ScheduleRepository.
func NewMongoScheduleRepo(dbName string) ScheduleRepository {
	db := database.MongoClient.Database(dbName)
	repo := &mongoScheduleRepo{
		coll: db.Collection("schedules"),
	}
	if err := repo.ensureIndexes(); err != nil {
		log.Fatalf("failed to create schedule indexes: %v", err)
	}
	return repo
}
