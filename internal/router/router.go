// Package router assembles the gin engine from the handler set.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/handler"
	"github.com/classledger/records-api/internal/middleware"
	"github.com/classledger/records-api/internal/service"
	"github.com/classledger/records-api/pkg/config"
	"github.com/classledger/records-api/pkg/logger"
	corsmiddleware "github.com/classledger/records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classledger/records-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth       *handler.AuthHandler
	Students   *handler.StudentHandler
	Teachers   *handler.TeacherHandler
	Courses    *handler.CourseHandler
	Attendance *handler.AttendanceHandler
	Activities *handler.ActivityHandler
	Reports    *handler.ReportHandler
}

// New builds the engine: infrastructure middleware, liveness endpoints and
// the /api route table. Everything under /api except /api/auth requires a
// valid token.
func New(cfg *config.Config, logr *zap.Logger, h Handlers, auth *service.AuthService, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", middleware.JWT(auth), h.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))
	{
		students := protected.Group("/students")
		{
			students.GET("", h.Students.List)
			students.POST("", h.Students.Create)
			students.GET("/:id", h.Students.Get)
			students.PUT("/:id", h.Students.Update)
			students.DELETE("/:id", h.Students.Delete)
			students.POST("/:id/enroll", h.Students.Enroll)
		}

		teachers := protected.Group("/teachers")
		{
			teachers.GET("", h.Teachers.List)
			teachers.POST("", h.Teachers.Create)
			teachers.GET("/:id", h.Teachers.Get)
			teachers.PUT("/:id", h.Teachers.Update)
			teachers.DELETE("/:id", h.Teachers.Delete)
		}

		courses := protected.Group("/courses")
		{
			courses.GET("", h.Courses.List)
			courses.POST("", h.Courses.Create)
			courses.GET("/:id", h.Courses.Get)
			courses.PUT("/:id", h.Courses.Update)
			courses.DELETE("/:id", h.Courses.Delete)
		}

		attendance := protected.Group("/attendance")
		{
			attendance.GET("", h.Attendance.List)
			attendance.POST("", h.Attendance.Create)
			attendance.GET("/student/:studentName", h.Attendance.StudentHistory)
			attendance.GET("/:id", h.Attendance.Get)
			attendance.PUT("/:id", h.Attendance.Update)
			attendance.DELETE("/:id", h.Attendance.Delete)
		}

		activities := protected.Group("/activities")
		{
			activities.GET("", h.Activities.List)
			activities.POST("", h.Activities.Create)
			activities.GET("/student/:studentName", h.Activities.StudentHistory)
			activities.GET("/:id", h.Activities.Get)
			activities.PUT("/:id", h.Activities.Update)
			activities.DELETE("/:id", h.Activities.Delete)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/attendance-summary", h.Reports.AttendanceSummary)
			reports.GET("/attendance-summary/export", h.Reports.ExportAttendanceSummary)
			reports.GET("/student/:id", h.Reports.StudentReport)
			reports.GET("/course/:id", h.Reports.CourseReport)
		}
	}

	return r
}
