package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"StockPredictor/internal/calculator"
	"StockPredictor/internal/forecast"
	"StockPredictor/internal/pipeline"
	"StockPredictor/internal/report"
)

// Refresher re-ingests and re-fits one symbol on demand.
type Refresher interface {
	RefreshOne(ctx context.Context, symbol string) (pipeline.Stock, error)
}

type APIHandler struct {
	registry  *pipeline.Registry
	refresher Refresher
	loc       *time.Location
}

// NewRouter builds the HTTP server: /health plus the /api/v1 routes.
func NewRouter(reg *pipeline.Registry, refresher Refresher, loc *time.Location) *gin.Engine {
	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	SetupRoutes(r.Group("/api/v1"), reg, refresher, loc)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func SetupRoutes(r *gin.RouterGroup, reg *pipeline.Registry, refresher Refresher, loc *time.Location) *APIHandler {
	handler := &APIHandler{registry: reg, refresher: refresher, loc: loc}

	r.GET("/symbols", handler.ListSymbols)
	r.GET("/predict/:symbol", handler.Predict)
	r.POST("/refresh/:symbol", handler.Refresh)
	return handler
}

type symbolStatus struct {
	Symbol    string                  `json:"symbol"`
	URL       string                  `json:"url"`
	Rows      int                     `json:"rows"`
	Fitted    bool                    `json:"fitted"`
	Slope     *float64                `json:"slope,omitempty"`
	Intercept *float64                `json:"intercept,omitempty"`
	Stats     *calculator.SeriesStats `json:"stats,omitempty"`
	UpdatedAt *time.Time              `json:"updated_at,omitempty"`
}

func toStatus(s pipeline.Stock) symbolStatus {
	st := symbolStatus{Symbol: s.Symbol, URL: s.URL, Rows: s.Rows, Fitted: s.Fitted(), Stats: s.Stats}
	if s.Fitted() {
		slope, intercept := s.Result.Model.Slope, s.Result.Model.Intercept
		st.Slope, st.Intercept = &slope, &intercept
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		st.UpdatedAt = &t
	}
	return st
}

func (h *APIHandler) ListSymbols(c *gin.Context) {
	stocks := h.registry.All()
	out := make([]symbolStatus, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, toStatus(s))
	}
	c.JSON(http.StatusOK, gin.H{"symbols": out})
}

// Predict answers GET /predict/:symbol?date=MM/DD/YYYY.
func (h *APIHandler) Predict(c *gin.Context) {
	symbol := c.Param("symbol")
	stock, ok := h.registry.Get(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol " + symbol})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required (MM/DD/YYYY)"})
		return
	}

	pred, err := stock.Predict(date, h.loc)
	var dateErr *forecast.InvalidDateFormatError
	switch {
	case errors.As(err, &dateErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect data format, should be MM/DD/YYYY"})
		return
	case errors.Is(err, pipeline.ErrNotFitted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":    pred.Symbol,
		"date":      pred.Date,
		"timestamp": pred.Timestamp,
		"price":     report.RoundPrice(pred.Price),
		"message":   report.FormatPrediction(pred),
	})
}

// Refresh re-scrapes and re-fits one symbol synchronously.
func (h *APIHandler) Refresh(c *gin.Context) {
	symbol := c.Param("symbol")
	if _, ok := h.registry.Get(symbol); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol " + symbol})
		return
	}

	stock, err := h.refresher.RefreshOne(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": "refreshed", "status": toStatus(stock)})
}
