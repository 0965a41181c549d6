package v1

import (
	"github.com/gin-gonic/gin"

	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/validation"
)

// bindJSON binds and validates the request body, pushing a 400 with
// readable field messages on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid request").WithDetails(validation.FormatValidationErrors(err)))
		return false
	}
	return true
}
