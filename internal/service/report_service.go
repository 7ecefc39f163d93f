package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/repository"
	"nutricoach/coach-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrReportNotReady is returned when a report is requested for a session
// that has not been completed yet.
var ErrReportNotReady = errors.New("session is not completed, no report to export")

// ReportService exports a completed session's finalized plan data as a
// JSON report object and hands out a presigned download URL. Rendering the
// report to PDF is an external formatting concern.
type ReportService interface {
	ExportReport(ctx context.Context, sessionID, userID primitive.ObjectID) (string, error)
}

// sessionReport is the exported document shape.
type sessionReport struct {
	SessionID      string                 `json:"sessionId"`
	Goal           string                 `json:"goal"`
	Comments       string                 `json:"comments,omitempty"`
	DurationMonths int                    `json:"durationMonths"`
	SessionStart   time.Time              `json:"sessionStart"`
	SessionEnd     *time.Time             `json:"sessionEnd,omitempty"`
	Result         *domain.AnalysisResult `json:"result"`
	Stats          *domain.ProgressStats  `json:"stats"`
	DayPlans       []domain.DayPlan       `json:"dayPlans"`
}

type reportService struct {
	sessionRepo repository.SessionRepository
	dayPlanRepo repository.DayPlanRepository
	store       storage.ObjectStore
	urlExpiry   time.Duration
}

// NewReportService creates a new instance of reportService.
func NewReportService(
	sessionRepo repository.SessionRepository,
	dayPlanRepo repository.DayPlanRepository,
	store storage.ObjectStore,
	urlExpiry time.Duration,
) ReportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &reportService{
		sessionRepo: sessionRepo,
		dayPlanRepo: dayPlanRepo,
		store:       store,
		urlExpiry:   urlExpiry,
	}
}

// ExportReport uploads the completed session's report document and returns
// a presigned URL for downloading it.
func (s *reportService) ExportReport(ctx context.Context, sessionID, userID primitive.ObjectID) (string, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	if session.UserID != userID {
		return "", ErrPermissionDenied
	}
	if session.Status != domain.SessionCompleted || session.Result == nil {
		return "", ErrReportNotReady
	}

	dayPlans, err := s.dayPlanRepo.GetByIDs(ctx, session.PlanDayIDs)
	if err != nil {
		return "", err
	}

	report := sessionReport{
		SessionID:      session.ID.Hex(),
		Goal:           session.Goal,
		Comments:       session.Comments,
		DurationMonths: session.DurationMonths,
		SessionStart:   session.SessionStart,
		SessionEnd:     session.SessionEnd,
		Result:         session.Result,
		Stats:          session.Stats,
		DayPlans:       dayPlans,
	}
	body, err := json.Marshal(report)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("reports/%s/%s.json", session.ID.Hex(), uuid.NewString())
	if err := s.store.PutObject(ctx, objectKey, "application/json", body); err != nil {
		return "", err
	}
	return s.store.GeneratePresignedDownloadURL(ctx, objectKey, s.urlExpiry)
}
