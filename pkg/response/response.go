// Package response writes the JSON envelopes every endpoint returns.
package response

import (
	"todo-backend/pkg/apperror"
	"todo-backend/pkg/logging"

	"github.com/gin-gonic/gin"
)

type SuccessEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func Success(c *gin.Context, status int, data any, message string) {
	c.JSON(status, SuccessEnvelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Error writes err as an error envelope. Unclassified errors are logged and
// reported as a generic internal failure.
func Error(c *gin.Context, log logging.Logger, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, ErrorEnvelope{
		StatusCode: appErr.StatusCode,
		Message:    appErr.Message,
		Success:    false,
	})
}
