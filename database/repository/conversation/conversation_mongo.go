package conversationRepo

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

// MongoConversationRepo is the MongoDB implementation of ConversationRepository.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

func NewMongoConversationRepo() *MongoConversationRepo {
	return &MongoConversationRepo{coll: database.Collection("conversations")}
}

// NewMongoConversationRepoWithCollection is used by tests that back the repo
// with their own collection handle.
func NewMongoConversationRepoWithCollection(coll *mongo.Collection) *MongoConversationRepo {
	return &MongoConversationRepo{coll: coll}
}

func (repo *MongoConversationRepo) GetByID(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := repo.coll.FindOne(ctx, bson.M{"tenantId": tenantID, "id": conversationID}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", conversationID, err)
	}
	return &conv, nil
}

func (repo *MongoConversationRepo) Save(ctx context.Context, conv *models.Conversation) error {
	conv.UpdatedAt = time.Now().UTC()
	filter := bson.M{"tenantId": conv.TenantID, "id": conv.ID}
	_, err := repo.coll.ReplaceOne(ctx, filter, conv, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", conv.ID, err)
	}
	return nil
}

// EnsureIndexes creates the conversation lookup index.
func (repo *MongoConversationRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}
	return nil
}
