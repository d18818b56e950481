package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"chatbooking/database"
	"chatbooking/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAvailabilityRepo is the MongoDB implementation of AvailabilityRepository.
type MongoAvailabilityRepo struct {
	weeklyColl    *mongo.Collection
	exceptionColl *mongo.Collection
}

func NewMongoAvailabilityRepo() *MongoAvailabilityRepo {
	return &MongoAvailabilityRepo{
		weeklyColl:    database.Collection("weekly_availability"),
		exceptionColl: database.Collection("availability_exceptions"),
	}
}

func (repo *MongoAvailabilityRepo) GetWeekly(ctx context.Context, tenantID, providerID string) ([]models.WeeklyAvailability, error) {
	cursor, err := repo.weeklyColl.Find(ctx, bson.M{"tenantId": tenantID, "providerId": providerID})
	if err != nil {
		return nil, fmt.Errorf("weekly availability query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.WeeklyAvailability
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode weekly availability: %w", err)
	}
	return out, nil
}

func (repo *MongoAvailabilityRepo) SetWeekly(ctx context.Context, w *models.WeeklyAvailability) error {
	filter := bson.M{"tenantId": w.TenantID, "providerId": w.ProviderID, "dayOfWeek": w.DayOfWeek}
	_, err := repo.weeklyColl.ReplaceOne(ctx, filter, w, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set weekly availability: %w", err)
	}
	return nil
}

func (repo *MongoAvailabilityRepo) ListExceptions(ctx context.Context, tenantID, providerID, from, to string) ([]models.AvailabilityException, error) {
	filter := bson.M{
		"tenantId":   tenantID,
		"providerId": providerID,
		"date":       bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := repo.exceptionColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("availability exception query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.AvailabilityException
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode availability exceptions: %w", err)
	}
	return out, nil
}

func (repo *MongoAvailabilityRepo) SetException(ctx context.Context, e *models.AvailabilityException) error {
	filter := bson.M{"tenantId": e.TenantID, "providerId": e.ProviderID, "date": e.Date}
	_, err := repo.exceptionColl.ReplaceOne(ctx, filter, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set availability exception: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes for both collections.
func (repo *MongoAvailabilityRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	weekly := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "providerId", Value: 1},
				{Key: "dayOfWeek", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := repo.weeklyColl.Indexes().CreateMany(ctx, weekly); err != nil {
		return fmt.Errorf("failed to create weekly availability indexes: %w", err)
	}

	exceptions := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "providerId", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := repo.exceptionColl.Indexes().CreateMany(ctx, exceptions); err != nil {
		return fmt.Errorf("failed to create availability exception indexes: %w", err)
	}
	return nil
}
