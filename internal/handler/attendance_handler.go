package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/service"
	appErrors "github.com/classledger/records-api/pkg/errors"
	"github.com/classledger/records-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Inclusive lower date bound"
// @Param endDate query string false "Inclusive upper date bound"
// @Param status query string false "Exact status"
// @Param course query string false "Exact course"
// @Param studentName query string false "Case-insensitive substring"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	startDate, err := dateQuery(c, "startDate")
	if err != nil {
		response.Error(c, err)
		return
	}
	endDate, err := dateQuery(c, "endDate")
	if err != nil {
		response.Error(c, err)
		return
	}

	page, limit := pageParams(c)
	filter := models.AttendanceFilter{
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      c.Query("status"),
		Course:      c.Query("course"),
		StudentName: c.Query("studentName"),
		Page:        page,
		Limit:       limit,
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	renderList(c, records, len(records), pagination)
}

// Get godoc
// @Summary Fetch one attendance record
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{id} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Create godoc
// @Summary Record attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req service.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Attendance record created successfully", record)
}

// Update godoc
// @Summary Update an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Param payload body service.UpdateAttendanceRequest true "Partial attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req service.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	record, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Attendance record updated successfully", record)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Attendance record deleted successfully", nil)
}

// StudentHistory godoc
// @Summary Per-student attendance history and statistics
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param studentName path string true "Student name (substring match)"
// @Success 200 {object} response.Envelope
// @Router /attendance/student/{studentName} [get]
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	studentName := c.Param("studentName")
	history, err := h.service.StudentHistory(c.Request.Context(), studentName)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"studentName": studentName,
		"statistics":  history.Statistics,
		"records":     history.Records,
	})
}
