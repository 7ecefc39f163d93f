package repository

import (
	"context"

	"nutricoach/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SessionRepository defines the interface for interacting with session data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, status *domain.SessionStatus) ([]domain.Session, error)

	// AppendDayPlanIDs atomically appends day-plan ids to the session's list
	// and bumps progress. Atomic at the document level so concurrent week
	// merges never lose appends.
	AppendDayPlanIDs(ctx context.Context, id primitive.ObjectID, dayPlanIDs []primitive.ObjectID, progress float64) error

	// SetStatus transitions the session status, recording an error message on
	// failure. Transitions out of a terminal status are rejected at the
	// filter level.
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus, errorMessage string) error

	// Complete stores the analysis result and derived stats, stamps the end
	// timestamp and flips the session to completed.
	Complete(ctx context.Context, id primitive.ObjectID, result *domain.AnalysisResult, stats *domain.ProgressStats) error
}

// DayPlanRepository defines the interface for interacting with day-plan data.
type DayPlanRepository interface {
	Create(ctx context.Context, plan *domain.DayPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DayPlan, error)

	// GetByIDs returns the referenced day plans sorted ascending by date.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.DayPlan, error)

	// GetPage returns up to limit of the referenced day plans sorted
	// ascending by date, skipping offset records.
	GetPage(ctx context.Context, ids []primitive.ObjectID, offset, limit int) ([]domain.DayPlan, error)

	// Patch applies only the fields present in the patch and returns the
	// updated document.
	Patch(ctx context.Context, id primitive.ObjectID, patch *domain.DayPlanPatch) (*domain.DayPlan, error)
}

// CategoryRepository defines access to coaching categories. Category
// management is an external admin concern; this service validates and lists
// them (Create exists for seeding).
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	GetAll(ctx context.Context) ([]domain.Category, error)
}

// UserRepository defines read access to users and their biometric profiles.
// UpdateWeight is the single write: the final-weight update at completion.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetPhysicalData(ctx context.Context, id primitive.ObjectID) (*domain.PhysicalData, error)
	UpdateWeight(ctx context.Context, physicalDataID primitive.ObjectID, weight float64) error
}
