// File: database/repository/reservation/reservation_mongo.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoReservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to create reservation %s: %w", res.ID, err)
	}
	return nil
}

func (r *mongoReservationRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete reservation %s: %w", id, err)
	}
	return nil
}

func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var res models.Reservation
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation %s: %w", id, err)
	}
	return &res, nil
}

func (r *mongoReservationRepo) ActiveExists(ctx context.Context, providerID, date, timeOfDay string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{
		"providerId": providerID,
		"date":       date,
		"time":       timeOfDay,
		"status":     bson.M{"$in": []models.Status{models.StatusPending, models.StatusConfirmed}},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check active reservations for %s/%s %s: %w", providerID, date, timeOfDay, err)
	}
	return count > 0, nil
}

func (r *mongoReservationRepo) UpdateStatus(ctx context.Context, id string, from, to models.Status) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}
	if to == models.StatusConfirmed {
		set["verified"] = true
	}
	update := bson.M{"$set": set}
	if to != models.StatusPending {
		// Leaving pending always retires the challenge reference.
		update["$unset"] = bson.M{"otpExpiresAt": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, update)
	if err != nil {
		return false, fmt.Errorf("failed to update reservation %s status: %w", id, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoReservationRepo) UpdateOTPExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{"otpExpiresAt": expiresAt, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation %s otp expiry: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepo) ExpireIfStale(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The deadline is part of the filter: a resend that refreshed it between
	// the sweep's listing and this update makes the filter miss.
	filter := bson.M{
		"id":           id,
		"status":       models.StatusPending,
		"otpExpiresAt": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set":   bson.M{"status": models.StatusExpired, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"otpExpiresAt": ""},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to expire reservation %s: %w", id, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoReservationRepo) ListExpiredPending(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{
		"status":       models.StatusPending,
		"otpExpiresAt": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list expired pending reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Reservation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode expired pending reservations: %w", err)
	}
	return out, nil
}
