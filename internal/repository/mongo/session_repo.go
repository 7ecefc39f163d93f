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

const sessionCollectionName = "sessions"

// Terminal statuses are excluded at the filter level so a completed or
// failed session can never regress, whatever order background writes land in.
var nonTerminalStatuses = bson.M{"$nin": bson.A{domain.SessionCompleted, domain.SessionFailed}}

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID || session.CategoryID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires userId and categoryId")
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.SessionStart = now
	session.LastUpdated = now
	if session.PlanDayIDs == nil {
		session.PlanDayIDs = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByUserID retrieves a user's sessions, optionally filtered by status,
// newest first.
func (r *mongoSessionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, status *domain.SessionStatus) ([]domain.Session, error) {
	filter := bson.M{"userId": userID}
	if status != nil {
		filter["status"] = *status
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionStart", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// AppendDayPlanIDs pushes ids onto the session's plan list in one atomic
// update. $push with $each keeps a week's ids contiguous while letting
// weeks land in completion order.
func (r *mongoSessionRepository) AppendDayPlanIDs(ctx context.Context, id primitive.ObjectID, dayPlanIDs []primitive.ObjectID, progress float64) error {
	if len(dayPlanIDs) == 0 {
		return nil
	}
	filter := bson.M{"_id": id, "status": nonTerminalStatuses}
	update := bson.M{
		"$push": bson.M{"planDayIds": bson.M{"$each": dayPlanIDs}},
		"$set": bson.M{
			"progress":    progress,
			"lastUpdated": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetStatus transitions the session status. The filter refuses to touch
// terminal sessions, which enforces status monotonicity in the store itself.
func (r *mongoSessionRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus, errorMessage string) error {
	set := bson.M{
		"status":      status,
		"lastUpdated": time.Now().UTC(),
	}
	if errorMessage != "" {
		set["errorMessage"] = errorMessage
	}
	filter := bson.M{"_id": id, "status": nonTerminalStatuses}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Complete attaches the analysis result and derived stats, forces progress
// to 1.0 and stamps the end of the session.
func (r *mongoSessionRepository) Complete(ctx context.Context, id primitive.ObjectID, result *domain.AnalysisResult, stats *domain.ProgressStats) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": id, "status": domain.SessionActive}
	update := bson.M{
		"$set": bson.M{
			"status":      domain.SessionCompleted,
			"result":      result,
			"stats":       stats,
			"progress":    1.0,
			"sessionEnd":  now,
			"lastUpdated": now,
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "sessionStart", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
