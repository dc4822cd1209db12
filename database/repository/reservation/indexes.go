// File: database/repository/reservation/indexes.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reservationIndexModels returns the index set for the reservations
// collection.
func reservationIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// ActiveExists query pattern.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("provider_date_time_status_idx"),
		},
		// Expiry sweep query pattern.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "otpExpiresAt", Value: 1}},
			Options: options.Index().SetName("status_otp_expiry_idx"),
		},
	}
}

// ensureIndexes creates the necessary indexes on the reservations collection.
func (r *mongoReservationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, reservationIndexModels()); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}
