package mongo

import (
	"context"
	"errors"
	"time"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	userCollectionName         = "users"
	physicalDataCollectionName = "physical_data"
)

// mongoUserRepository implements repository.UserRepository. Users and their
// biometric profiles are owned by the auth/profile collaborator; this
// service reads them and writes exactly one field, the final weight.
type mongoUserRepository struct {
	users        *mongo.Collection
	physicalData *mongo.Collection
}

// NewMongoUserRepository creates a new User repository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		users:        db.Collection(userCollectionName),
		physicalData: db.Collection(physicalDataCollectionName),
	}
}

// GetByID retrieves a single user by ID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetPhysicalData retrieves a biometric profile by ID.
func (r *mongoUserRepository) GetPhysicalData(ctx context.Context, id primitive.ObjectID) (*domain.PhysicalData, error) {
	var data domain.PhysicalData
	err := r.physicalData.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &data, nil
}

// UpdateWeight stores the user-reported final weight on the profile.
func (r *mongoUserRepository) UpdateWeight(ctx context.Context, physicalDataID primitive.ObjectID, weight float64) error {
	update := bson.M{"$set": bson.M{
		"weight":    weight,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.physicalData.UpdateOne(ctx, bson.M{"_id": physicalDataID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes. Call during startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
