package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondServiceError maps a service error onto a status code and writes it.
// Internal failures are logged and answered with fallback instead of the raw error.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperrors.StatusCode(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Info("Resource not found", slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrUpstream):
		logger.Error("Upstream rate source failure", slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: "Exchange rate provider unavailable"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

func bindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
}
