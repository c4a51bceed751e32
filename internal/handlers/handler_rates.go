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

// ratesHandler serves stored exchange rates.
type ratesHandler struct {
	conversionService portssvc.ConversionSvcFacade
	now               func() time.Time
}

func newRatesHandler(cs portssvc.ConversionSvcFacade) *ratesHandler {
	return &ratesHandler{conversionService: cs, now: time.Now}
}

// registerRatesRoutes registers routes related to exchange rates.
func registerRatesRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade) {
	h := newRatesHandler(conversionService)

	rates := rg.Group("/rates")
	{
		rates.GET("/historical", h.getHistoricalRates)
		rates.GET("/historical/date", h.getRateForDate)
		rates.GET("/latest", h.getLatestRates)
	}
}

// getHistoricalRates godoc
// @Summary Get a historical rate series
// @Description Returns stored rates of a pair between two dates, at most 365 days apart
// @Tags rates
// @Produce  json
// @Param   base query string true "Base currency code"
// @Param   target query string true "Target currency code"
// @Param   startDate query string true "Start date (yyyy-mm-dd)"
// @Param   endDate query string true "End date (yyyy-mm-dd)"
// @Success 200 {object} dto.HistoricalRatesResponse
// @Failure 400 {object} ErrorResponse "Invalid date range"
// @Failure 404 {object} ErrorResponse "Currency not found"
// @Security ApiKeyAuth
// @Router /rates/historical [get]
func (h *ratesHandler) getHistoricalRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.HistoricalRatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, logger, err)
		return
	}

	start, end := dto.ParseOptionalDate(q.StartDate), dto.ParseOptionalDate(q.EndDate)
	switch {
	case start.After(*end):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "startDate must not be after endDate"})
		return
	case end.After(domain.DateOnly(h.now())):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "endDate cannot be in the future"})
		return
	case end.Sub(*start) > dto.MaxHistoricalRangeDays*24*time.Hour:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Date range cannot exceed 365 days"})
		return
	}

	logger = logger.With(slog.String("base", q.Base), slog.String("target", q.Target))
	series, err := h.conversionService.GetHistoricalSeries(c.Request.Context(), q.Base, q.Target, *start, *end)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve historical rates")
		return
	}

	c.JSON(http.StatusOK, dto.HistoricalRatesResponse{
		Base:      domain.NormalizeCode(q.Base),
		Target:    domain.NormalizeCode(q.Target),
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Rates:     series,
	})
}

// getRateForDate godoc
// @Summary Get the rate of a date
// @Description Resolves a pair's rate for one past date
// @Tags rates
// @Produce  json
// @Param   base query string true "Base currency code"
// @Param   target query string true "Target currency code"
// @Param   date query string true "Date (yyyy-mm-dd)"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Rate not found"
// @Security ApiKeyAuth
// @Router /rates/historical/date [get]
func (h *ratesHandler) getRateForDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.DatedRateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, logger, err)
		return
	}

	date := dto.ParseOptionalDate(q.Date)
	if date.After(domain.DateOnly(h.now())) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Date cannot be in the future"})
		return
	}

	rate, err := h.conversionService.GetRate(c.Request.Context(), q.Base, q.Target, date)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

// getLatestRates godoc
// @Summary Get the latest stored rates
// @Description Returns the newest stored rate of every target quoted against base
// @Tags rates
// @Produce  json
// @Param   base query string true "Base currency code"
// @Success 200 {object} dto.LatestRatesResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Currency not found"
// @Security ApiKeyAuth
// @Router /rates/latest [get]
func (h *ratesHandler) getLatestRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.LatestRatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, logger, err)
		return
	}

	rates, err := h.conversionService.GetLatestRates(c.Request.Context(), q.Base)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve latest rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToLatestRatesResponse(domain.NormalizeCode(q.Base), rates))
}
