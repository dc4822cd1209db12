// File: database/repository/schedule/schedule_mongo.go
package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoScheduleRepo) GetOrCreateDay(ctx context.Context, providerID, date string, template []models.Slot) (*models.DaySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "date": date}
	update := bson.M{
		"$setOnInsert": models.DaySchedule{
			ProviderID: providerID,
			Date:       date,
			Slots:      template,
			CreatedAt:  time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	// Concurrent first-access upserts race; the unique (providerId, date)
	// index rejects every insert but one with a duplicate-key error, and the
	// loser's retry then matches the winner's document.
	var day models.DaySchedule
	for attempt := 0; ; attempt++ {
		err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&day)
		if err == nil {
			return &day, nil
		}
		if mongo.IsDuplicateKeyError(err) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("failed to get or create day %s/%s: %w", providerID, date, err)
	}
}

func (r *mongoScheduleRepo) ListFree(ctx context.Context, providerID, date string) ([]string, error) {
	past, err := models.IsPastDate(date, time.Now())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if past {
		return nil, ErrPastDate
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var day models.DaySchedule
	err = r.coll.FindOne(ctx, bson.M{"providerId": providerID, "date": date}).Decode(&day)
	if err == mongo.ErrNoDocuments {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load day %s/%s: %w", providerID, date, err)
	}

	free := make([]string, 0, len(day.Slots))
	for _, s := range day.Slots {
		if !s.Occupied {
			free = append(free, s.Time)
		}
	}
	return free, nil
}

// Reserve is the one atomic primitive of the store: a single conditional
// UpdateOne whose filter only matches while the slot is unoccupied. Two
// racing callers hit the same document filter; MongoDB serializes the
// document update, so exactly one matches.
func (r *mongoScheduleRepo) Reserve(ctx context.Context, providerID, date, timeOfDay, reservationID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"slots":      bson.M{"$elemMatch": bson.M{"time": timeOfDay, "occupied": false}},
	}
	update := bson.M{
		"$set": bson.M{
			"slots.$.occupied":      true,
			"slots.$.reservationId": reservationID,
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot %s/%s %s: %w", providerID, date, timeOfDay, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Lost the filter: either the slot is occupied or the label is not in
	// the grid. Distinguish for the caller.
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"providerId": providerID,
		"date":       date,
		"slots.time": timeOfDay,
	})
	if err != nil {
		return fmt.Errorf("failed to inspect slot %s/%s %s: %w", providerID, date, timeOfDay, err)
	}
	if count == 0 {
		return ErrUnknownSlot
	}
	return ErrSlotTaken
}

func (r *mongoScheduleRepo) Release(ctx context.Context, providerID, date, timeOfDay, reservationID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"slots":      bson.M{"$elemMatch": bson.M{"time": timeOfDay, "reservationId": reservationID}},
	}
	update := bson.M{
		"$set":   bson.M{"slots.$.occupied": false},
		"$unset": bson.M{"slots.$.reservationId": ""},
	}

	// Releasing a slot held by someone else (or already free) matches
	// nothing, which is the wanted no-op against double-release races.
	_, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release slot %s/%s %s: %w", providerID, date, timeOfDay, err)
	}
	return nil
}
