package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/story-survey-service/internal/auth"
	"github.com/SAP-F-2025/story-survey-service/internal/render"
	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	surveyHandler  *SurveyHandler
	sessionHandler *SessionHandler
	exportHandler  *ExportHandler
	limiter        *RateLimiter
	operator       *auth.Operator
	logger         utils.Logger
}

func NewHandlerManager(
	surveyService services.SurveyService,
	exportService services.ExportService,
	renderer *render.Renderer,
	limiter *RateLimiter,
	operator *auth.Operator,
	logger utils.Logger,
) *HandlerManager {
	if limiter == nil {
		limiter = NewRateLimiter(0, 1, logger)
	}
	return &HandlerManager{
		surveyHandler:  NewSurveyHandler(surveyService, renderer, logger),
		sessionHandler: NewSessionHandler(surveyService, logger),
		exportHandler:  NewExportHandler(exportService, logger),
		limiter:        limiter,
		operator:       operator,
		logger:         logger,
	}
}

// SetupRoutes sets up the participant pages and the JSON API
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.ContextLogger(hm.logger), utils.LoggerMiddleware(hm.logger))

	router.GET("/health", HealthCheck)

	limited := hm.limiter.Middleware()

	// Participant pages
	survey := router.Group("/survey")
	{
		survey.GET("", limited, hm.surveyHandler.StartSurvey)
		survey.GET("/:id", hm.surveyHandler.ShowSurvey)
		survey.POST("/:id", hm.surveyHandler.PostSurvey)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", limited, hm.sessionHandler.CreateSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.PUT("/:id/responses", hm.sessionHandler.RecordResponses)
			sessions.POST("/:id/next", hm.sessionHandler.NextPage)
			sessions.POST("/:id/previous", hm.sessionHandler.PreviousPage)
			sessions.POST("/:id/submit", limited, hm.sessionHandler.SubmitSession)
		}

		// The export carries participant ids and is only served to operators.
		if hm.operator.Enabled() {
			v1.GET("/submissions/export", RequireOperator(hm.operator, hm.logger), hm.exportHandler.ExportSubmissions)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "story-survey-service",
	})
}
