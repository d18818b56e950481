package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the conflict guard and queries rely on.
// The partial unique index over active rows is the slot identity key: the
// conditional insert is atomic because Mongo enforces it server-side, and
// cancelled bookings (active=false) never block re-booking of their window.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slotIdentityIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "providerId", Value: 1},
			{Key: "start", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"active": true}),
	}

	indexModels := []mongo.IndexModel{
		slotIdentityIdx,
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "providerId", Value: 1}, {Key: "end", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "customer.email", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "conversationId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
