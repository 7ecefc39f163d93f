package service

import (
	"context"
	"errors"
	"sync"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/generation"
	"nutricoach/coach-app/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrDayPlanNotFound     = errors.New("day plan not found")
	ErrPermissionDenied    = errors.New("session does not belong to this user")
	ErrSessionNotActive    = errors.New("session is not active")
	ErrResultNotReady      = errors.New("session has no analysis result yet")
	ErrInvalidDuration     = errors.New("duration must be at least 1 month")
	ErrPhysicalDataMissing = errors.New("user has no physical data on file")
)

// Day plans are paged one calendar week at a time.
const dayPlanPageSize = 7

// CreateSessionRequest is the input for starting a new coaching session.
type CreateSessionRequest struct {
	CategoryID     primitive.ObjectID
	Goal           string
	DurationMonths int
	Comments       string
}

// SessionService owns the session lifecycle: creation, background plan
// generation, day-plan queries and patches, completion and result access.
type SessionService interface {
	CreateSession(ctx context.Context, userID primitive.ObjectID, req CreateSessionRequest) (*domain.Session, error)
	ListSessions(ctx context.Context, userID primitive.ObjectID, status *domain.SessionStatus) ([]domain.Session, error)
	GetSessionDayPlans(ctx context.Context, sessionID primitive.ObjectID, offset int) ([]domain.DayPlan, error)
	PatchDayPlan(ctx context.Context, sessionID, dayPlanID primitive.ObjectID, patch *domain.DayPlanPatch) (*domain.DayPlan, error)
	CompleteSession(ctx context.Context, sessionID, userID primitive.ObjectID, finalWeight float64) (*domain.AnalysisResult, error)
	GetResult(ctx context.Context, sessionID, userID primitive.ObjectID) (*domain.AnalysisResult, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo  repository.SessionRepository
	dayPlanRepo  repository.DayPlanRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	generator    generation.Generator
	assembler    PlanAssembler
	analyzer     ProgressAnalyzer
	log          *logrus.Logger

	// schedule runs the background generation task. A goroutine in
	// production; tests swap in a synchronous runner.
	schedule func(task func())

	// mergeLocks serializes week merges per session so a week's day-plan
	// ids land contiguously even when weeks complete out of order.
	mu         sync.Mutex
	mergeLocks map[primitive.ObjectID]*sync.Mutex
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	dayPlanRepo repository.DayPlanRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	generator generation.Generator,
	assembler PlanAssembler,
	analyzer ProgressAnalyzer,
	log *logrus.Logger,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		dayPlanRepo:  dayPlanRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		generator:    generator,
		assembler:    assembler,
		analyzer:     analyzer,
		log:          log,
		schedule:     func(task func()) { go task() },
		mergeLocks:   make(map[primitive.ObjectID]*sync.Mutex),
	}
}

// === Creation and background generation ===

// CreateSession validates the owner and category, persists a pending
// session and schedules generation. The caller gets the session back
// immediately and polls its status; generation is never awaited here.
func (s *sessionService) CreateSession(ctx context.Context, userID primitive.ObjectID, req CreateSessionRequest) (*domain.Session, error) {
	if req.DurationMonths < 1 {
		return nil, ErrInvalidDuration
	}
	if req.DurationMonths > domain.MaxDurationMonths {
		req.DurationMonths = domain.MaxDurationMonths
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	session := &domain.Session{
		UserID:         userID,
		CategoryID:     req.CategoryID,
		Goal:           req.Goal,
		Comments:       req.Comments,
		DurationMonths: req.DurationMonths,
		PlanDayIDs:     []primitive.ObjectID{},
		Status:         domain.SessionPending,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = sessionID

	s.schedule(func() { s.runGeneration(sessionID) })
	return session, nil
}

// genState aggregates the outcome of concurrent week units.
type genState struct {
	mu          sync.Mutex
	mergedWeeks int
	fatal       error
}

func (g *genState) recordFatal(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fatal == nil {
		g.fatal = err
	}
}

func (g *genState) fatalErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fatal
}

// runGeneration is the background task scheduled at creation. Errors here
// never reach an interactive caller; they end up in the session's
// errorMessage and are observed through status polling.
func (s *sessionService) runGeneration(sessionID primitive.ObjectID) {
	ctx := context.Background()
	log := s.log.WithField("sessionId", sessionID.Hex())

	defer s.releaseLock(sessionID)

	if err := s.sessionRepo.SetStatus(ctx, sessionID, domain.SessionProcessing, ""); err != nil {
		log.WithError(err).Error("failed to mark session processing")
		return
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		s.failSession(ctx, log, sessionID, err)
		return
	}
	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		s.failSession(ctx, log, sessionID, ErrUserNotFound)
		return
	}
	category, err := s.categoryRepo.GetByID(ctx, session.CategoryID)
	if err != nil {
		s.failSession(ctx, log, sessionID, ErrCategoryNotFound)
		return
	}

	var physical *domain.PhysicalData
	if user.PhysicalDataID != nil {
		physical, err = s.userRepo.GetPhysicalData(ctx, *user.PhysicalDataID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.failSession(ctx, log, sessionID, err)
			return
		}
	}

	months := session.DurationMonths
	if months > domain.MaxDurationMonths {
		months = domain.MaxDurationMonths
	}
	if months < 1 {
		months = 1
	}
	totalWeeks := months * 4

	// One generation call per (month, week) unit, all in flight at once.
	// A unit that fails to generate or parse is skipped, not retried; the
	// session still goes active with a shorter plan.
	state := &genState{}
	var wg sync.WaitGroup
	for month := 1; month <= months; month++ {
		for week := 1; week <= 4; week++ {
			wg.Add(1)
			go func(month, week int) {
				defer wg.Done()
				weekPlan, err := s.generator.GenerateWeek(ctx, generation.WeekRequest{
					Physical:       physical,
					CategoryName:   category.Name,
					Goal:           session.Goal,
					Comments:       session.Comments,
					DurationMonths: months,
					Month:          month,
					Week:           week,
				})
				if err != nil {
					log.WithError(err).WithFields(logrus.Fields{
						"month": month,
						"week":  week,
					}).Warn("skipping week unit")
					return
				}
				s.mergeWeek(ctx, log, sessionID, weekPlan, totalWeeks, state)
			}(month, week)
		}
	}
	wg.Wait()

	if err := state.fatalErr(); err != nil {
		s.failSession(ctx, log, sessionID, err)
		return
	}
	if err := s.sessionRepo.SetStatus(ctx, sessionID, domain.SessionActive, ""); err != nil {
		log.WithError(err).Error("failed to mark session active")
		return
	}
	log.WithField("mergedWeeks", state.mergedWeeks).Info("plan generation finished")
}

// mergeWeek persists one week's days and appends their ids to the session.
// The per-session lock makes this the only writer of the id list at a
// time, so appends from out-of-order week completions cannot interleave
// within a week or lose updates.
func (s *sessionService) mergeWeek(ctx context.Context, log *logrus.Entry, sessionID primitive.ObjectID, weekPlan *generation.WeekPlan, totalWeeks int, state *genState) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if state.fatalErr() != nil {
		return
	}

	ids, err := s.assembler.AssembleWeek(ctx, weekPlan)
	if err != nil {
		// Assembly failures (corrupt date, store unavailable) are
		// unrecoverable for the whole session, unlike skipped units.
		state.recordFatal(err)
		return
	}

	state.mu.Lock()
	state.mergedWeeks++
	progress := float64(state.mergedWeeks) / float64(totalWeeks)
	state.mu.Unlock()

	if err := s.sessionRepo.AppendDayPlanIDs(ctx, sessionID, ids, progress); err != nil {
		state.recordFatal(err)
		return
	}
	log.WithFields(logrus.Fields{
		"month": weekPlan.Month,
		"week":  weekPlan.Week,
		"days":  len(ids),
	}).Info("merged week into session")
}

func (s *sessionService) failSession(ctx context.Context, log *logrus.Entry, sessionID primitive.ObjectID, cause error) {
	log.WithError(cause).Error("session generation failed")
	if err := s.sessionRepo.SetStatus(ctx, sessionID, domain.SessionFailed, cause.Error()); err != nil {
		log.WithError(err).Error("failed to record session failure")
	}
}

func (s *sessionService) lockFor(sessionID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.mergeLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.mergeLocks[sessionID] = lock
	}
	return lock
}

func (s *sessionService) releaseLock(sessionID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mergeLocks, sessionID)
}

// === Queries and mutations ===

// ListSessions returns the user's sessions, optionally filtered by status.
func (s *sessionService) ListSessions(ctx context.Context, userID primitive.ObjectID, status *domain.SessionStatus) ([]domain.Session, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.sessionRepo.GetByUserID(ctx, userID, status)
}

// GetSessionDayPlans returns one calendar week of the session's day plans,
// sorted ascending by date, starting at offset.
func (s *sessionService) GetSessionDayPlans(ctx context.Context, sessionID primitive.ObjectID, offset int) ([]domain.DayPlan, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	return s.dayPlanRepo.GetPage(ctx, session.PlanDayIDs, offset, dayPlanPageSize)
}

// PatchDayPlan applies only the fields present in the patch. It checks
// that both documents exist but does NOT verify the day plan is a member
// of the session's id list; a day plan of another session can be patched
// through any existing session id. Kept as-is deliberately.
func (s *sessionService) PatchDayPlan(ctx context.Context, sessionID, dayPlanID primitive.ObjectID, patch *domain.DayPlanPatch) (*domain.DayPlan, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	updated, err := s.dayPlanRepo.Patch(ctx, dayPlanID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayPlanNotFound
		}
		return nil, err
	}
	return updated, nil
}

// === Completion ===

// CompleteSession runs the progress analysis for an active session and, on
// success, stores the result, writes the final weight back to the profile
// and flips the session to completed. Analysis failures propagate and the
// session stays active, so completion is retriable.
func (s *sessionService) CompleteSession(ctx context.Context, sessionID, userID primitive.ObjectID, finalWeight float64) (*domain.AnalysisResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if session.Status != domain.SessionActive {
		return nil, ErrSessionNotActive
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.PhysicalDataID == nil {
		return nil, ErrPhysicalDataMissing
	}
	physical, err := s.userRepo.GetPhysicalData(ctx, *user.PhysicalDataID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhysicalDataMissing
		}
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, session.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	dayPlans, err := s.dayPlanRepo.GetByIDs(ctx, session.PlanDayIDs)
	if err != nil {
		return nil, err
	}

	result, stats, err := s.analyzer.Analyze(ctx, session, category, physical, finalWeight, dayPlans)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateWeight(ctx, *user.PhysicalDataID, finalWeight); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Complete(ctx, sessionID, result, stats); err != nil {
		return nil, err
	}
	return result, nil
}

// GetResult returns the stored analysis result of a completed session.
func (s *sessionService) GetResult(ctx context.Context, sessionID, userID primitive.ObjectID) (*domain.AnalysisResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if session.Result == nil {
		return nil, ErrResultNotReady
	}
	return session.Result, nil
}
