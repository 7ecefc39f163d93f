package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayStatus type for user-reported completion of a single day
type DayStatus string

const (
	DayNotDone DayStatus = "not_done"
	DayPartial DayStatus = "partial"
	DayFull    DayStatus = "full"
)

// Meal is one meal slot of a day plan. JSON keys follow the generator's
// wire schema so responses decode straight into this shape.
type Meal struct {
	Name     string   `bson:"meal" json:"meal"` // e.g., "breakfast"
	Food     []string `bson:"food" json:"food"`
	Calories int      `bson:"calories" json:"calories"`
}

// WorkoutEntry is one prescribed exercise of a day plan.
type WorkoutEntry struct {
	Exercise       string `bson:"exercise" json:"exercise"`
	Sets           int    `bson:"sets" json:"sets"`
	Reps           int    `bson:"reps" json:"reps"`
	CaloriesBurned int    `bson:"caloriesBurned" json:"calories_burned"`
}

// DayPlan is one calendar day's prescribed meals and workout.
// Month/Week are pointers because legacy rows predate those fields.
type DayPlan struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Month               *int               `bson:"month,omitempty" json:"month,omitempty"`
	Week                *int               `bson:"week,omitempty" json:"week,omitempty"`
	DayNumber           int                `bson:"dayNumber" json:"dayNumber"` // Sequential across the whole plan, 1-based
	DayOfWeek           string             `bson:"dayOfWeek" json:"dayOfWeek"`
	Date                time.Time          `bson:"date" json:"date"`
	Meals               []Meal             `bson:"meals" json:"meals"`
	Workout             []WorkoutEntry     `bson:"workout" json:"workout"`
	TotalCalories       int                `bson:"totalCalories" json:"totalCalories"`
	TotalCaloriesBurned int                `bson:"totalCaloriesBurned" json:"totalCaloriesBurned"`
	Status              DayStatus          `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
