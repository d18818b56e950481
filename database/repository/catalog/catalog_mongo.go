package catalogRepo

import (
	"context"
	"fmt"

	"chatbooking/database"
	"chatbooking/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCatalogRepo is the MongoDB implementation of CatalogRepository.
type MongoCatalogRepo struct {
	serviceColl  *mongo.Collection
	providerColl *mongo.Collection
}

func NewMongoCatalogRepo() *MongoCatalogRepo {
	return &MongoCatalogRepo{
		serviceColl:  database.Collection("services"),
		providerColl: database.Collection("providers"),
	}
}

func (repo *MongoCatalogRepo) GetService(ctx context.Context, tenantID, serviceID string) (*models.Service, error) {
	var s models.Service
	err := repo.serviceColl.FindOne(ctx, bson.M{"tenantId": tenantID, "id": serviceID}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service %s: %w", serviceID, err)
	}
	return &s, nil
}

func (repo *MongoCatalogRepo) GetProvider(ctx context.Context, tenantID, providerID string) (*models.Provider, error) {
	var p models.Provider
	err := repo.providerColl.FindOne(ctx, bson.M{"tenantId": tenantID, "id": providerID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider %s: %w", providerID, err)
	}
	return &p, nil
}

func (repo *MongoCatalogRepo) ListServices(ctx context.Context, tenantID string) ([]models.Service, error) {
	cursor, err := repo.serviceColl.Find(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return nil, fmt.Errorf("service query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Service
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return out, nil
}

func (repo *MongoCatalogRepo) ListProviders(ctx context.Context, tenantID, serviceID string) ([]models.Provider, error) {
	filter := bson.M{"tenantId": tenantID}
	if serviceID != "" {
		filter["serviceIds"] = serviceID
	}
	cursor, err := repo.providerColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("provider query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Provider
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return out, nil
}
