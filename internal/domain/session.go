package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the session lifecycle
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"    // Created, generation not started yet
	SessionProcessing SessionStatus = "processing" // Background generation in flight
	SessionActive     SessionStatus = "active"     // Plan generated, user working through it
	SessionFailed     SessionStatus = "failed"     // Generation hit an unrecoverable error
	SessionCompleted  SessionStatus = "completed"  // User finished, analysis attached
)

// IsTerminal reports whether no further status transition is allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionFailed || s == SessionCompleted
}

// MaxDurationMonths caps the requested plan length before it reaches the generator.
const MaxDurationMonths = 3

// Session represents one user's enrollment in a goal-directed plan.
// PlanDayIDs only grows while generation runs; day plans are independent
// documents referenced by id, not embedded.
type Session struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID   `bson:"userId" json:"userId"`
	CategoryID     primitive.ObjectID   `bson:"categoryId" json:"categoryId"`
	Goal           string               `bson:"goal" json:"goal"`
	Comments       string               `bson:"comments,omitempty" json:"comments,omitempty"` // Free-text restrictions (diet, injuries, ...)
	DurationMonths int                  `bson:"durationMonths" json:"durationMonths"`
	Progress       float64              `bson:"progress" json:"progress"` // 0.0 - 1.0, advances as weeks merge
	PlanDayIDs     []primitive.ObjectID `bson:"planDayIds" json:"planDayIds"`
	Status         SessionStatus        `bson:"status" json:"status"`
	ErrorMessage   string               `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	Result         *AnalysisResult      `bson:"result,omitempty" json:"result,omitempty"`
	Stats          *ProgressStats       `bson:"stats,omitempty" json:"stats,omitempty"`
	SessionStart   time.Time            `bson:"sessionStart" json:"sessionStart"`
	LastUpdated    time.Time            `bson:"lastUpdated" json:"lastUpdated"`
	SessionEnd     *time.Time           `bson:"sessionEnd,omitempty" json:"sessionEnd,omitempty"`
}
