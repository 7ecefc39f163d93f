package api

import (
	"net/http"

	"nutricoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the session and category surfaces under /api/v1.
// Everything except the health check sits behind the JWT middleware.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	sessionService service.SessionService,
	reportService service.ReportService,
	categoryService service.CategoryService,
) {
	sessionHandler := NewSessionHandler(sessionService, reportService)
	categoryHandler := NewCategoryHandler(categoryService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/categories", categoryHandler.GetCategories)

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.GET("/:id/days", sessionHandler.GetSessionDayPlans)
			sessionGroup.PATCH("/:id/day-plans/:dayPlanId", sessionHandler.PatchDayPlan)
			sessionGroup.POST("/:id/complete", sessionHandler.CompleteSession)
			sessionGroup.GET("/:id/result", sessionHandler.GetResult)
			sessionGroup.GET("/:id/report", sessionHandler.ExportReport)
		}
	}
}
