package domain

// DayPlanPatch carries a partial update of a day plan. Nil fields are left
// untouched; an all-nil patch is a no-op.
type DayPlanPatch struct {
	Meals               *[]Meal         `json:"meals,omitempty"`
	Workout             *[]WorkoutEntry `json:"workout,omitempty"`
	TotalCalories       *int            `json:"totalCalories,omitempty"`
	TotalCaloriesBurned *int            `json:"totalCaloriesBurned,omitempty"`
	Status              *DayStatus      `json:"status,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p *DayPlanPatch) IsEmpty() bool {
	return p.Meals == nil && p.Workout == nil && p.TotalCalories == nil &&
		p.TotalCaloriesBurned == nil && p.Status == nil
}
