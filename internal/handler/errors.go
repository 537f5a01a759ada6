package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
)

// writeError maps a service error onto the API's error response shape.
// Unclassified errors are logged and reported as a generic server error so
// internals never reach the client.
func writeError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Printf("[API] Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   string(apperr.KindInternal),
			Message: "unexpected error",
		})
		return
	}

	c.JSON(apperr.HTTPStatus(appErr.Kind), model.ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func abortError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}
