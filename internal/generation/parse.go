package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"nutricoach/coach-app/internal/domain"
)

// trimCodeFence strips markdown code fences the model sometimes wraps
// around its output despite being told not to.
func trimCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseWeekResponse decodes and shape-checks one week of generator output.
// Exactly 7 day entries are required; anything else fails as malformed.
// Calorie arithmetic and date/weekday correctness are the caller's problem.
func parseWeekResponse(raw string) (*WeekPlan, error) {
	var week WeekPlan
	if err := json.Unmarshal([]byte(trimCodeFence(raw)), &week); err != nil {
		return nil, malformed(fmt.Errorf("decoding week response: %w", err))
	}
	if week.Month < 1 || week.Week < 1 || week.Week > weeksPerMonth {
		return nil, malformed(fmt.Errorf("week response has out-of-range indices: month=%d week=%d", week.Month, week.Week))
	}
	if len(week.Days) != daysPerWeek {
		return nil, malformed(fmt.Errorf("week response has %d day entries, want %d", len(week.Days), daysPerWeek))
	}
	for i, day := range week.Days {
		if day.Date == "" {
			return nil, malformed(fmt.Errorf("day entry %d is missing a date", i))
		}
	}
	return &week, nil
}

// parseAnalysisResponse decodes the end-of-session assessment.
func parseAnalysisResponse(raw string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(trimCodeFence(raw)), &result); err != nil {
		return nil, malformed(fmt.Errorf("decoding analysis response: %w", err))
	}
	return &result, nil
}
