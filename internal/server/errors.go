package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ingestdomain "github.com/cenergia/mercado/internal/ingest/domain"
	recdomain "github.com/cenergia/mercado/internal/records/domain"
)

// ErrInvalidRequest marks malformed request bodies and parameters.
var ErrInvalidRequest = errors.New("invalid request")

type errorBody struct {
	Status  string                   `json:"status"`
	Action  string                   `json:"action,omitempty"`
	Message string                   `json:"message"`
	Errors  []ingestdomain.ItemError `json:"errors,omitempty"`
}

// ErrorHandlingMiddleware renders the last handler error after the chain
// completes, keeping status mapping in one place.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

// AbortWithError records err for the error middleware and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorBody) {
	var valErr *ingestdomain.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, errorBody{
			Status:  "error",
			Message: "validation failed",
			Errors:  valErr.Items,
		}
	}

	var pubErr *ingestdomain.PublicationDateExistsError
	if errors.As(err, &pubErr) {
		return http.StatusConflict, errorBody{
			Status:  "error",
			Message: pubErr.Error(),
		}
	}

	switch {
	case errors.Is(err, ingestdomain.ErrNoChanges):
		return http.StatusConflict, errorBody{
			Status:  "conflict",
			Action:  "none",
			Message: "identical record already exists",
		}
	case errors.Is(err, ingestdomain.ErrDuplicateRecord):
		return http.StatusConflict, errorBody{
			Status:  "error",
			Message: err.Error(),
		}
	case errors.Is(err, ingestdomain.ErrEmptyBatch):
		return http.StatusBadRequest, errorBody{
			Status:  "error",
			Message: "input data list cannot be empty",
		}
	case errors.Is(err, recdomain.ErrUnknownRecordType):
		return http.StatusNotFound, errorBody{
			Status:  "error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorBody{
			Status:  "error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorBody{
			Status:  "error",
			Message: "internal server error",
		}
	}
}
