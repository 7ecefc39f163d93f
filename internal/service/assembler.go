package service

import (
	"context"
	"fmt"
	"time"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/generation"
	"nutricoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dayPlanDateLayout = "2006-01-02"

// PlanAssembler converts one parsed week response into persisted day-plan
// records.
type PlanAssembler interface {
	// AssembleWeek persists one DayPlan per generated day and returns the
	// ids in input order. Days are persisted individually so a failed week
	// stays partially visible for diagnosis.
	AssembleWeek(ctx context.Context, week *generation.WeekPlan) ([]primitive.ObjectID, error)
}

type planAssembler struct {
	dayPlanRepo repository.DayPlanRepository
}

// NewPlanAssembler creates a new instance of planAssembler.
func NewPlanAssembler(dayPlanRepo repository.DayPlanRepository) PlanAssembler {
	return &planAssembler{dayPlanRepo: dayPlanRepo}
}

func (a *planAssembler) AssembleWeek(ctx context.Context, week *generation.WeekPlan) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(week.Days))
	for i, day := range week.Days {
		// A corrupt date breaks the day-numbering guarantees downstream, so
		// it is fatal for the week, not skipped.
		date, err := time.Parse(dayPlanDateLayout, day.Date)
		if err != nil {
			return ids, fmt.Errorf("parsing date of day entry %d (month %d, week %d): %w", i, week.Month, week.Week, err)
		}

		// Month/week come from the week-level fields; status and burned
		// calories are forced to their defaults regardless of what the
		// generator echoed.
		month, weekIndex := week.Month, week.Week
		plan := &domain.DayPlan{
			Month:               &month,
			Week:                &weekIndex,
			DayNumber:           day.DayNumber,
			DayOfWeek:           day.DayOfWeek,
			Date:                date,
			Meals:               day.Meals,
			Workout:             day.Workout,
			TotalCalories:       day.TotalCalories,
			TotalCaloriesBurned: 0,
			Status:              domain.DayNotDone,
		}

		id, err := a.dayPlanRepo.Create(ctx, plan)
		if err != nil {
			return ids, fmt.Errorf("persisting day plan %d (month %d, week %d): %w", day.DayNumber, week.Month, week.Week, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
