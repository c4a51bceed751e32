package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	portssvc "github.com/SscSPs/currency_converter/internal/core/ports/services"
	"github.com/SscSPs/currency_converter/internal/dto"
	"github.com/SscSPs/currency_converter/internal/middleware"
	"github.com/gin-gonic/gin"
)

// conversionHandler handles HTTP requests for amount conversion.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
	now               func() time.Time
}

func newConversionHandler(cs portssvc.ConversionSvcFacade) *conversionHandler {
	return &conversionHandler{conversionService: cs, now: time.Now}
}

// registerConversionRoutes registers routes related to conversion.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade) {
	h := newConversionHandler(conversionService)

	convert := rg.Group("/convert")
	{
		convert.POST("", h.convert)
		convert.POST("/historical", h.convertHistorical)
		convert.GET("/rate", h.getRate)
		convert.POST("/batch", h.convertBatch)
	}
}

// convert godoc
// @Summary Convert an amount
// @Description Converts an amount at the current rate, or at the rate of the given date
// @Tags conversion
// @Accept  json
// @Produce  json
// @Param   request body dto.ConversionRequest true "Conversion request"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Currency or rate not found"
// @Failure 502 {object} ErrorResponse "Rate provider unavailable"
// @Security ApiKeyAuth
// @Router /convert [post]
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("from", req.FromCurrency), slog.String("to", req.ToCurrency))
	result, err := h.conversionService.Convert(c.Request.Context(), req.FromCurrency, req.ToCurrency, req.Amount, dto.ParseOptionalDate(req.Date))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionResponse(result))
}

// convertHistorical godoc
// @Summary Convert an amount at a past date
// @Description Converts an amount using the stored rate of the given date
// @Tags conversion
// @Accept  json
// @Produce  json
// @Param   request body dto.HistoricalConversionRequest true "Historical conversion request"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} ErrorResponse "Invalid input or future date"
// @Failure 404 {object} ErrorResponse "Currency or rate not found"
// @Security ApiKeyAuth
// @Router /convert/historical [post]
func (h *conversionHandler) convertHistorical(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.HistoricalConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	date := dto.ParseOptionalDate(req.Date)
	if date.After(domain.DateOnly(h.now())) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Date cannot be in the future"})
		return
	}

	result, err := h.conversionService.Convert(c.Request.Context(), req.FromCurrency, req.ToCurrency, req.Amount, date)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionResponse(result))
}

// getRate godoc
// @Summary Get an exchange rate
// @Description Resolves the current rate of a pair, or the rate of the given date
// @Tags conversion
// @Produce  json
// @Param   from query string true "Source currency code"
// @Param   to query string true "Target currency code"
// @Param   date query string false "Date (yyyy-mm-dd)"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Currency or rate not found"
// @Failure 502 {object} ErrorResponse "Rate provider unavailable"
// @Security ApiKeyAuth
// @Router /convert/rate [get]
func (h *conversionHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.RateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, logger, err)
		return
	}

	rate, err := h.conversionService.GetRate(c.Request.Context(), q.From, q.To, dto.ParseOptionalDate(q.Date))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

// convertBatch godoc
// @Summary Convert several amounts
// @Description Runs up to 10 conversions; each one succeeds or fails on its own
// @Tags conversion
// @Accept  json
// @Produce  json
// @Param   request body dto.BatchConversionRequest true "Batch of conversions"
// @Success 200 {object} dto.BatchConversionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Security ApiKeyAuth
// @Router /convert/batch [post]
func (h *conversionHandler) convertBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BatchConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	start := h.now()
	requests := make([]domain.ConversionRequest, len(req.Requests))
	for i, r := range req.Requests {
		requests[i] = r.ToConversionRequest()
	}
	items := h.conversionService.ConvertBatch(c.Request.Context(), requests)

	resp := dto.ToBatchConversionResponse(items, time.Since(start))
	logger.Info("Batch conversion finished",
		slog.Int("total", resp.TotalRequests),
		slog.Int("successful", resp.SuccessfulConversions))
	c.JSON(http.StatusOK, resp)
}
