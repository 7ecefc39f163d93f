package api

import (
	"errors"
	"net/http"
	"strconv"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes the session query/mutation surface over HTTP.
type SessionHandler struct {
	sessionService service.SessionService
	reportService  service.ReportService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, reportService service.ReportService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		reportService:  reportService,
	}
}

// --- DTOs ---

type CreateSessionRequest struct {
	CategoryID string `json:"categoryId" binding:"required"`
	Goal       string `json:"goal" binding:"required"`
	Duration   int    `json:"duration" binding:"required,min=1,max=3"`
	Comments   string `json:"comments"`
}

type CompleteSessionRequest struct {
	FinalWeight float64 `json:"finalWeight" binding:"required,gt=0"`
}

// --- Handlers ---

// CreateSession starts a new session. Generation happens in the
// background; the response carries the pending session for status polling.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := h.userIDFromToken(c)
	if !ok {
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid category ID format.")
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), userID, service.CreateSessionRequest{
		CategoryID:     categoryID,
		Goal:           req.Goal,
		DurationMonths: req.Duration,
		Comments:       req.Comments,
	})
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, session)
}

// ListSessions returns the caller's sessions, optionally filtered by the
// "status" query parameter.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := h.userIDFromToken(c)
	if !ok {
		return
	}

	var status *domain.SessionStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.SessionStatus(raw)
		switch s {
		case domain.SessionPending, domain.SessionProcessing, domain.SessionActive, domain.SessionFailed, domain.SessionCompleted:
			status = &s
		default:
			abortWithError(c, http.StatusBadRequest, "Unknown session status filter.")
			return
		}
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), userID, status)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSessionDayPlans returns one calendar week of day plans starting at
// the "offset" query parameter.
func (h *SessionHandler) GetSessionDayPlans(c *gin.Context) {
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid offset.")
		return
	}

	plans, err := h.sessionService.GetSessionDayPlans(c.Request.Context(), sessionID, offset)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	if plans == nil {
		plans = []domain.DayPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// PatchDayPlan applies a partial update to a single day plan.
func (h *SessionHandler) PatchDayPlan(c *gin.Context) {
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	dayPlanID, err := primitive.ObjectIDFromHex(c.Param("dayPlanId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day plan ID format.")
		return
	}

	var patch domain.DayPlanPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	updated, err := h.sessionService.PatchDayPlan(c.Request.Context(), sessionID, dayPlanID, &patch)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CompleteSession triggers the progress analysis for an active session.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	userID, ok := h.userIDFromToken(c)
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.sessionService.CompleteSession(c.Request.Context(), sessionID, userID, req.FinalWeight)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetResult returns the stored analysis result of a completed session.
func (h *SessionHandler) GetResult(c *gin.Context) {
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	userID, ok := h.userIDFromToken(c)
	if !ok {
		return
	}

	result, err := h.sessionService.GetResult(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportReport uploads the completed session's report and returns a
// presigned download URL.
func (h *SessionHandler) ExportReport(c *gin.Context) {
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	userID, ok := h.userIDFromToken(c)
	if !ok {
		return
	}

	url, err := h.reportService.ExportReport(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// --- Helpers ---

func (h *SessionHandler) userIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// mapServiceError maps service sentinel errors to HTTP status codes.
func (h *SessionHandler) mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrDayPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionNotActive),
		errors.Is(err, service.ErrResultNotReady),
		errors.Is(err, service.ErrReportNotReady):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrPhysicalDataMissing):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal server error.")
	}
}
