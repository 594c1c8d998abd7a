package main

import (
	"fmt"
	"log"

	_ "github.com/classledger/records-api/api/swagger"
	"github.com/classledger/records-api/internal/handler"
	"github.com/classledger/records-api/internal/repository"
	"github.com/classledger/records-api/internal/router"
	"github.com/classledger/records-api/internal/service"
	"github.com/classledger/records-api/internal/validation"
	"github.com/classledger/records-api/pkg/cache"
	"github.com/classledger/records-api/pkg/config"
	"github.com/classledger/records-api/pkg/database"
	"github.com/classledger/records-api/pkg/logger"
)

// @title ClassLedger Records API
// @version 1.0.0
// @description Student, attendance and activity record keeping
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validation.New()

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, cfg.JWT, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheRepo, validate, logr)
	reportSvc := service.NewReportService(attendanceRepo, activityRepo, studentRepo, courseRepo, cacheRepo, metricsSvc, cfg.Reports, logr)
	exportSvc := service.NewExportService(reportSvc, logr)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Teachers:   handler.NewTeacherHandler(teacherSvc),
		Courses:    handler.NewCourseHandler(courseSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Activities: handler.NewActivityHandler(activitySvc),
		Reports:    handler.NewReportHandler(reportSvc, exportSvc),
	}

	r := router.New(cfg, logr, handlers, authSvc, metricsSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
