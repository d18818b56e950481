package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"chatbooking/database"
	"chatbooking/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo is the MongoDB implementation of BookingRepository.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository bound to the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{coll: database.Collection("bookings")}
}

// NewMongoBookingRepoWithCollection is used by integration tests.
func NewMongoBookingRepoWithCollection(coll *mongo.Collection) *MongoBookingRepo {
	return &MongoBookingRepo{coll: coll}
}

func (repo *MongoBookingRepo) InsertIfAbsent(ctx context.Context, b *models.Booking) error {
	// Atomicity comes from the partial unique index on
	// (tenantId, providerId, start) over active rows; see indexes.go.
	if _, err := repo.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) Delete(ctx context.Context, tenantID, bookingID string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"tenantId": tenantID, "id": bookingID})
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", bookingID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("booking %s not found for delete", bookingID)
	}
	return nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := repo.coll.FindOne(ctx, bson.M{"tenantId": tenantID, "id": bookingID}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) ListOverlapping(ctx context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"tenantId":   tenantID,
		"providerId": providerID,
		"status":     bson.M{"$in": []models.BookingStatus{models.BookingPending, models.BookingConfirmed}},
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": from},
	}
	return repo.find(ctx, filter)
}

func (repo *MongoBookingRepo) ListByProvider(ctx context.Context, tenantID, providerID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"tenantId":   tenantID,
		"providerId": providerID,
		"start":      bson.M{"$gte": from, "$lt": to},
	}
	return repo.find(ctx, filter)
}

func (repo *MongoBookingRepo) ListByCustomerEmail(ctx context.Context, tenantID, email string) ([]models.Booking, error) {
	return repo.find(ctx, bson.M{"tenantId": tenantID, "customer.email": email})
}

func (repo *MongoBookingRepo) GetByConversation(ctx context.Context, tenantID, conversationID string) (*models.Booking, error) {
	var b models.Booking
	err := repo.coll.FindOne(ctx, bson.M{"tenantId": tenantID, "conversationId": conversationID}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by conversation %s: %w", conversationID, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) UpdateStatusIfCurrent(ctx context.Context, tenantID, bookingID string, expected, next models.BookingStatus) (bool, error) {
	active := next == models.BookingPending || next == models.BookingConfirmed
	filter := bson.M{
		"tenantId": tenantID,
		"id":       bookingID,
		"status":   expected,
	}
	update := bson.M{"$set": bson.M{
		"status":    next,
		"active":    active,
		"updatedAt": time.Now().UTC(),
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update booking %s status: %w", bookingID, err)
	}
	return res.MatchedCount == 1, nil
}

func (repo *MongoBookingRepo) ListExpiredPending(ctx context.Context, createdBefore time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":    models.BookingPending,
		"createdAt": bson.M{"$lt": createdBefore},
	}
	return repo.find(ctx, filter)
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("booking query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return out, nil
}
