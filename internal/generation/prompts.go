package generation

import (
	"fmt"
	"strings"
	"time"

	"nutricoach/coach-app/internal/domain"
)

// daysPerWeek and weeksPerMonth pin the 4-week/28-day month structure the
// whole pipeline assumes.
const (
	daysPerWeek   = 7
	weeksPerMonth = 4
)

// weekStartDate returns the Monday the requested week starts on: the next
// Monday from now, shifted by the week's position in the overall plan.
func weekStartDate(now time.Time, month, week int) time.Time {
	start := now
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 0, ((month-1)*weeksPerMonth+(week-1))*daysPerWeek)
}

func describePhysicalData(p *domain.PhysicalData) string {
	if p == nil {
		return "No data"
	}
	return fmt.Sprintf("Height: %.0fcm, Weight: %.1fkg, Age: %d", p.Height, p.Weight, p.Age)
}

// buildWeekPrompt produces the instruction for a single (month, week) unit.
// The embedded example doubles as the output schema contract.
func buildWeekPrompt(req WeekRequest, startDate time.Time) string {
	date := startDate.Format("2006-01-02")
	var b strings.Builder
	fmt.Fprintf(&b, `You are an AI-powered nutritionist and fitness coach. Generate a structured plan only for week %d of month %d of a %d month program.

## User Details:
- **Goal:** %s
- **Category:** %s
- **Restrictions:** %s
- **Physical Data:** %s

## Schedule Requirements:
- Generate a detailed 7-day plan (1 week)
- The first day must be Monday (%s)
- Day numbers continue sequentially across the whole program, ending at %d
- Each day must include:
  - Meals (Breakfast, Lunch, Dinner) with food items, portion sizes and calories per meal
  - Workouts with exercise details, sets, reps and calories burned
  - Total daily calories in/out
  - Default status: "not_done"

## Instructions:
- Return only a valid JSON object with no additional formatting or text
- Do not use code blocks or any symbols outside of standard JSON syntax

## Example Response:
{
  "month": %d,
  "week": %d,
  "days": [
    {
      "date": "%s",
      "day_number": 1,
      "day_of_week": "Monday",
      "meals": [
        {"meal": "breakfast", "food": ["Oatmeal (1 cup)", "Banana (1 medium)", "Almonds (1oz)"], "calories": 400},
        {"meal": "lunch", "food": ["Grilled chicken (6oz)", "Brown rice (1 cup)", "Veggies (2 cups)"], "calories": 600},
        {"meal": "dinner", "food": ["Salmon (5oz)", "Quinoa (3/4 cup)", "Broccoli (2 cups)"], "calories": 500}
      ],
      "total_calories": 1500,
      "workout": [
        {"exercise": "Squats", "sets": 3, "reps": 15, "calories_burned": 50},
        {"exercise": "Push-ups", "sets": 3, "reps": 20, "calories_burned": 40}
      ],
      "total_calories_burned": 90,
      "status": "not_done"
    }
  ]
}`,
		req.Week, req.Month, req.DurationMonths,
		req.Goal, req.CategoryName, req.Comments, describePhysicalData(req.Physical),
		date, req.DurationMonths*weeksPerMonth*daysPerWeek,
		req.Month, req.Week, date,
	)
	return b.String()
}

// buildAnalysisPrompt produces the end-of-session assessment instruction.
func buildAnalysisPrompt(req AnalysisRequest, dayPlansJSON string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an AI-powered fitness and nutrition analyst. Analyze the entire fitness and nutrition plan of a user, assess their progress, and provide structured insights.

## USER DETAILS:
- **Goal:** %s
- **Category:** %s
- **Restrictions/Comments:** %s
- **Initial Weight:** %.1f kg
- **Final Weight:** %.1f kg
- **Target Weight:** Extract target weight from the goal statement.

USER COMPLETED PLAN:
- **Total Days:** %d
- **All Day Plans:** %s

## ANALYSIS REQUIREMENTS:
1. Goal Achievement: did the user achieve their goal? Provide exact numbers and percentages.
2. Nutrition Analysis: average daily calorie intake; was the user in a caloric deficit, surplus, or stable?
3. Workout Analysis: total workout days, most frequently performed exercises, total calories burned.
4. Consistency & Streaks: longest streak without skipping a day, skipped days, best and worst week by adherence.
5. Summary: brief summary of performance with personalized tips.
6. Fun Fact: an interesting insight about the user's journey.

## OUTPUT FORMAT:
Return only a structured JSON object. Do not include additional text, explanations, or code fences.

### Example Response:
{
  "goal_achieved": true,
  "progress_summary": "User lost X kg, achieved Y%% of the goal.",
  "nutrition_analysis": {
    "average_calories_per_day": 1800,
    "calorie_trend": "deficit"
  },
  "workout_analysis": {
    "total_workout_days": 20,
    "most_frequent_exercises": ["Squats", "Push-ups"],
    "total_calories_burned": 4500
  },
  "consistency": {
    "longest_streak_days": 12,
    "skipped_days": 3,
    "best_week": "Week 2",
    "worst_week": "Week 4"
  },
  "summary": "Short paragraph summarizing performance and suggestions.",
  "fun_fact": "Interesting fact about the user's journey."
}`,
		req.Goal, req.CategoryName, req.Comments,
		req.InitialWeight, req.FinalWeight,
		len(req.DayPlans), dayPlansJSON,
	)
	return b.String()
}
