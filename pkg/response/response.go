package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	appErrors "github.com/classledger/records-api/pkg/errors"
)

// Envelope is the common response contract consumed by the admin UI.
type Envelope struct {
	Success     bool                        `json:"success"`
	Message     string                      `json:"message,omitempty"`
	Count       *int                        `json:"count,omitempty"`
	Total       *int                        `json:"total,omitempty"`
	TotalPages  *int                        `json:"totalPages,omitempty"`
	CurrentPage *int                        `json:"currentPage,omitempty"`
	Data        interface{}                 `json:"data,omitempty"`
	Errors      []appErrors.FieldViolation  `json:"errors,omitempty"`
	Error       string                      `json:"error,omitempty"`
}

// OK sends a plain success response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Message sends a success response with a human readable message and
// optional payload.
func Message(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, data interface{}) {
	Message(c, http.StatusCreated, message, data)
}

// List sends a paginated collection response. Count reflects the page slice
// actually returned while total counts every match. A nil slice renders as
// data:[] rather than null.
func List(c *gin.Context, data interface{}, count, total, totalPages, currentPage int) {
	if v := reflect.ValueOf(data); !v.IsValid() || (v.Kind() == reflect.Slice && v.IsNil()) {
		data = []interface{}{}
	}
	c.JSON(http.StatusOK, Envelope{
		Success:     true,
		Count:       &count,
		Total:       &total,
		TotalPages:  &totalPages,
		CurrentPage: &currentPage,
		Data:        data,
	})
}

// Error maps any error onto the envelope. Validation failures carry the
// itemized violation list; internal failures expose the diagnostic string
// alongside a generic message.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	envelope := Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Violations,
	}
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		envelope.Error = appErr.Err.Error()
	}
	c.JSON(appErr.Status, envelope)
}
