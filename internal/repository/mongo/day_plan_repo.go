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

const dayPlanCollectionName = "day_plans"

// mongoDayPlanRepository implements repository.DayPlanRepository
type mongoDayPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoDayPlanRepository creates a new DayPlan repository.
func NewMongoDayPlanRepository(db *mongo.Database) repository.DayPlanRepository {
	return &mongoDayPlanRepository{
		collection: db.Collection(dayPlanCollectionName),
	}
}

// Create inserts a single day plan. The assembler persists day by day so a
// partial week remains visible for diagnosis.
func (r *mongoDayPlanRepository) Create(ctx context.Context, plan *domain.DayPlan) (primitive.ObjectID, error) {
	if plan.DayNumber < 1 {
		return primitive.NilObjectID, errors.New("day plan requires a 1-based day number")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single day plan by its ID.
func (r *mongoDayPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DayPlan, error) {
	var plan domain.DayPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByIDs retrieves the referenced day plans sorted ascending by date.
// Callers must not rely on the session's id-list order; weeks merge in
// completion order.
func (r *mongoDayPlanRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.DayPlan, error) {
	return r.find(ctx, ids, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

// GetPage retrieves one page of the referenced day plans sorted ascending
// by date.
func (r *mongoDayPlanRepository) GetPage(ctx context.Context, ids []primitive.ObjectID, offset, limit int) ([]domain.DayPlan, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, ids, findOptions)
}

func (r *mongoDayPlanRepository) find(ctx context.Context, ids []primitive.ObjectID, findOptions *options.FindOptions) ([]domain.DayPlan, error) {
	if len(ids) == 0 {
		return []domain.DayPlan{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.DayPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Patch applies only the fields present in the patch document and returns
// the updated day plan. An empty patch just re-reads the document.
func (r *mongoDayPlanRepository) Patch(ctx context.Context, id primitive.ObjectID, patch *domain.DayPlanPatch) (*domain.DayPlan, error) {
	if patch == nil || patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Meals != nil {
		set["meals"] = *patch.Meals
	}
	if patch.Workout != nil {
		set["workout"] = *patch.Workout
	}
	if patch.TotalCalories != nil {
		set["totalCalories"] = *patch.TotalCalories
	}
	if patch.TotalCaloriesBurned != nil {
		set["totalCaloriesBurned"] = *patch.TotalCaloriesBurned
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	var updated domain.DayPlan
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// EnsureDayPlanIndexes creates necessary indexes. Call during startup.
func EnsureDayPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
