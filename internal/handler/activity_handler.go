package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/service"
	appErrors "github.com/classledger/records-api/pkg/errors"
	"github.com/classledger/records-api/pkg/response"
)

// ActivityHandler wires HTTP endpoints to the activity service.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List activity records
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Inclusive lower date bound"
// @Param endDate query string false "Inclusive upper date bound"
// @Param activity query string false "Exact activity type"
// @Param course query string false "Exact course"
// @Param studentName query string false "Case-insensitive substring"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
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
	filter := models.ActivityFilter{
		StartDate:   startDate,
		EndDate:     endDate,
		Activity:    c.Query("activity"),
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
// @Summary Fetch one activity record
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Create godoc
// @Summary Record an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
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
	response.Created(c, "Activity record created successfully", record)
}

// Update godoc
// @Summary Update an activity record
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Param payload body service.UpdateActivityRequest true "Partial activity payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	var req service.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}

	record, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Activity record updated successfully", record)
}

// Delete godoc
// @Summary Delete an activity record
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Activity record deleted successfully", nil)
}

// StudentHistory godoc
// @Summary Per-student activity history and score average
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param studentName path string true "Student name (substring match)"
// @Success 200 {object} response.Envelope
// @Router /activities/student/{studentName} [get]
func (h *ActivityHandler) StudentHistory(c *gin.Context) {
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
