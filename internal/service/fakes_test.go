package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/generation"
	"nutricoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory session repository ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]domain.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.SessionStart = now
	session.LastUpdated = now
	if session.PlanDayIDs == nil {
		session.PlanDayIDs = []primitive.ObjectID{}
	}
	r.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := session
	copied.PlanDayIDs = append([]primitive.ObjectID(nil), session.PlanDayIDs...)
	return &copied, nil
}

func (r *fakeSessionRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, status *domain.SessionStatus) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, session := range r.sessions {
		if session.UserID != userID {
			continue
		}
		if status != nil && session.Status != *status {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

func (r *fakeSessionRepo) AppendDayPlanIDs(ctx context.Context, id primitive.ObjectID, dayPlanIDs []primitive.ObjectID, progress float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.Status.IsTerminal() {
		return repository.ErrNotFound
	}
	session.PlanDayIDs = append(session.PlanDayIDs, dayPlanIDs...)
	session.Progress = progress
	session.LastUpdated = time.Now().UTC()
	r.sessions[id] = session
	return nil
}

func (r *fakeSessionRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.Status.IsTerminal() {
		return repository.ErrNotFound
	}
	session.Status = status
	if errorMessage != "" {
		session.ErrorMessage = errorMessage
	}
	session.LastUpdated = time.Now().UTC()
	r.sessions[id] = session
	return nil
}

func (r *fakeSessionRepo) Complete(ctx context.Context, id primitive.ObjectID, result *domain.AnalysisResult, stats *domain.ProgressStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.Status != domain.SessionActive {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	session.Status = domain.SessionCompleted
	session.Result = result
	session.Stats = stats
	session.Progress = 1.0
	session.SessionEnd = &now
	session.LastUpdated = now
	r.sessions[id] = session
	return nil
}

// --- In-memory day-plan repository ---

type fakeDayPlanRepo struct {
	mu        sync.Mutex
	plans     map[primitive.ObjectID]domain.DayPlan
	createErr error // when set, Create fails with this error
}

func newFakeDayPlanRepo() *fakeDayPlanRepo {
	return &fakeDayPlanRepo{plans: make(map[primitive.ObjectID]domain.DayPlan)}
}

func (r *fakeDayPlanRepo) Create(ctx context.Context, plan *domain.DayPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *fakeDayPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DayPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &plan, nil
}

func (r *fakeDayPlanRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.DayPlan, error) {
	return r.GetPage(ctx, ids, 0, len(ids))
}

func (r *fakeDayPlanRepo) GetPage(ctx context.Context, ids []primitive.ObjectID, offset, limit int) ([]domain.DayPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DayPlan
	for _, id := range ids {
		if plan, ok := r.plans[id]; ok {
			out = append(out, plan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if offset >= len(out) {
		return []domain.DayPlan{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeDayPlanRepo) Patch(ctx context.Context, id primitive.ObjectID, patch *domain.DayPlanPatch) (*domain.DayPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch != nil && !patch.IsEmpty() {
		if patch.Meals != nil {
			plan.Meals = *patch.Meals
		}
		if patch.Workout != nil {
			plan.Workout = *patch.Workout
		}
		if patch.TotalCalories != nil {
			plan.TotalCalories = *patch.TotalCalories
		}
		if patch.TotalCaloriesBurned != nil {
			plan.TotalCaloriesBurned = *patch.TotalCaloriesBurned
		}
		if patch.Status != nil {
			plan.Status = *patch.Status
		}
		plan.UpdatedAt = time.Now().UTC()
		r.plans[id] = plan
	}
	return &plan, nil
}

// --- In-memory category and user repositories ---

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[primitive.ObjectID]domain.Category)}
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *domain.Category) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now().UTC()
	r.categories[category.ID] = *category
	return category.ID, nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &category, nil
}

func (r *fakeCategoryRepo) GetAll(ctx context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Category
	for _, category := range r.categories {
		out = append(out, category)
	}
	return out, nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]domain.User
	physical map[primitive.ObjectID]domain.PhysicalData
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[primitive.ObjectID]domain.User),
		physical: make(map[primitive.ObjectID]domain.PhysicalData),
	}
}

func (r *fakeUserRepo) addUser(weight float64) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	physID := primitive.NewObjectID()
	r.physical[physID] = domain.PhysicalData{ID: physID, Weight: weight, Height: 180, Age: 30}
	userID := primitive.NewObjectID()
	r.users[userID] = domain.User{ID: userID, FirstName: "Test", Email: fmt.Sprintf("%s@example.com", userID.Hex()), PhysicalDataID: &physID}
	return userID
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetPhysicalData(ctx context.Context, id primitive.ObjectID) (*domain.PhysicalData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.physical[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &data, nil
}

func (r *fakeUserRepo) UpdateWeight(ctx context.Context, physicalDataID primitive.ObjectID, weight float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.physical[physicalDataID]
	if !ok {
		return repository.ErrNotFound
	}
	data.Weight = weight
	r.physical[physicalDataID] = data
	return nil
}

// --- Scripted generator ---

type fakeGenerator struct {
	weekFn    func(req generation.WeekRequest) (*generation.WeekPlan, error)
	analyzeFn func(req generation.AnalysisRequest) (*domain.AnalysisResult, error)
}

func (g *fakeGenerator) GenerateWeek(ctx context.Context, req generation.WeekRequest) (*generation.WeekPlan, error) {
	if g.weekFn != nil {
		return g.weekFn(req)
	}
	return makeWeekPlan(req.Month, req.Week), nil
}

func (g *fakeGenerator) AnalyzeProgress(ctx context.Context, req generation.AnalysisRequest) (*domain.AnalysisResult, error) {
	if g.analyzeFn != nil {
		return g.analyzeFn(req)
	}
	return &domain.AnalysisResult{GoalAchieved: true, Summary: "well done"}, nil
}

// planBaseDate is a Monday so generated weeks start on the right weekday.
var planBaseDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// makeWeekPlan builds a valid 7-day week for the given (month, week) unit
// with plan-wide sequential day numbers.
func makeWeekPlan(month, week int) *generation.WeekPlan {
	plan := &generation.WeekPlan{Month: month, Week: week}
	weekOffset := (month-1)*4 + (week - 1)
	for i := 0; i < 7; i++ {
		date := planBaseDate.AddDate(0, 0, weekOffset*7+i)
		plan.Days = append(plan.Days, generation.GeneratedDay{
			Date:      date.Format("2006-01-02"),
			DayNumber: weekOffset*7 + i + 1,
			DayOfWeek: date.Weekday().String(),
			Meals: []domain.Meal{
				{Name: "breakfast", Food: []string{"Oatmeal (1 cup)"}, Calories: 400},
				{Name: "lunch", Food: []string{"Grilled chicken (6oz)"}, Calories: 600},
			},
			TotalCalories: 1000,
			Workout: []domain.WorkoutEntry{
				{Exercise: "Squats", Sets: 3, Reps: 15, CaloriesBurned: 50},
			},
			TotalCaloriesBurned: 50,
			Status:              "not_done",
		})
	}
	return plan
}
