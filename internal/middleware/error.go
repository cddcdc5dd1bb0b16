package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "pocketpilot/internal/errors"
	"pocketpilot/internal/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error,
// provided nothing has been written yet.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError writes the JSON error body for err. AppErrors keep their code
// and status; their internal cause is logged, never returned. Anything else
// becomes a generic INTERNAL_ERROR.
func WriteError(c *gin.Context, err error) {
	log := logger.With("request_id", RequestID(c), "path", c.Request.URL.Path, "method", c.Request.Method)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Errorw("unexpected error", "error", err)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
	}

	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
