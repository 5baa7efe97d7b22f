package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/pinelocal"
)

// Error messages returned to clients.
const (
	msgMissingAuth     = "Missing Authorization header"
	msgInvalidAPIKey   = "Invalid API key"
	msgRateLimited     = "Rate limit exceeded"
	msgInvalidBody     = "Invalid request body"
	msgInvalidName     = "Invalid index name"
	msgInvalidDim      = "Invalid dimension"
	msgInvalidMetric   = "Invalid metric"
	msgInvalidSpec     = "Invalid spec"
	msgNotFound        = "Index not found"
	msgAlreadyExists   = "Index already exists"
	msgEmptyBatch      = "Vectors array is required and must not be empty"
	msgMissingID       = "Vector id is required"
	msgMissingQuery    = "Query vector is required"
	msgInvalidTopK     = "Invalid topK value"
	msgInternal        = "Internal server error"
	msgRequestCanceled = "Request canceled"
)

// operation distinguishes the dimension mismatch messages of upsert and query.
type operation int

const (
	opIndex operation = iota
	opUpsert
	opQuery
)

type errorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// statusFor maps a DB error to an HTTP status and client message.
func statusFor(op operation, err error) (int, string) {
	var dm *pinelocal.ErrDimensionMismatch
	var id *pinelocal.ErrInvalidDimension

	switch {
	case errors.Is(err, pinelocal.ErrInvalidIndexName):
		return http.StatusBadRequest, msgInvalidName
	case errors.As(err, &id):
		return http.StatusBadRequest, msgInvalidDim
	case errors.Is(err, pinelocal.ErrInvalidMetric):
		return http.StatusBadRequest, msgInvalidMetric
	case errors.Is(err, pinelocal.ErrInvalidSpec):
		return http.StatusBadRequest, msgInvalidSpec
	case errors.Is(err, pinelocal.ErrEmptyBatch):
		return http.StatusBadRequest, msgEmptyBatch
	case errors.Is(err, pinelocal.ErrInvalidVectorID):
		return http.StatusBadRequest, msgMissingID
	case errors.Is(err, pinelocal.ErrMissingQueryVector):
		return http.StatusBadRequest, msgMissingQuery
	case errors.Is(err, pinelocal.ErrInvalidK):
		return http.StatusBadRequest, msgInvalidTopK
	case errors.As(err, &dm):
		if op == opQuery {
			return http.StatusBadRequest, fmt.Sprintf("Query vector must have dimension %d", dm.Expected)
		}
		return http.StatusBadRequest, fmt.Sprintf("All vectors must have dimension %d", dm.Expected)
	case errors.Is(err, pinelocal.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, pinelocal.ErrAlreadyExists):
		return http.StatusConflict, msgAlreadyExists
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, msgRequestCanceled
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (s *Server) fail(c *gin.Context, op operation, err error) {
	status, msg := statusFor(op, err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			"request_id", requestIDFrom(c),
			"error", err,
		)
	}
	abortWithError(c, status, msg)
}
