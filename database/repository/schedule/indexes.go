// File: database/repository/schedule/indexes.go
package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// scheduleIndexModels returns the index set for the schedules collection.
// The unique (providerId, date) index is load-bearing: it is what makes the
// lazy day upsert single-winner, so Reserve always targets one document.
func scheduleIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_provider_date"),
		},
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "slots.occupied", Value: 1}},
			Options: options.Index().SetName("provider_date_occupancy_idx"),
		},
	}
}

// ensureIndexes creates the necessary indexes on the schedules collection.
func (r *mongoScheduleRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, scheduleIndexModels()); err != nil {
		return fmt.Errorf("failed to create schedule indexes: %w", err)
	}
	return nil
}
