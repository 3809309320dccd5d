package api

import (
	"errors"
	"net/http"
	"time"

	"GoldBean/internal/calculator"
	"GoldBean/internal/history"
	"GoldBean/internal/model"
	"GoldBean/internal/pricing"
	"GoldBean/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type APIHandler struct {
	price    *pricing.Service
	history  *history.Service
	holdings store.HoldingStore
	log      *logrus.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(price *pricing.Service, hist *history.Service, holdings store.HoldingStore, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		a, ok, err := hist.RemoteAvailability(c.Request.Context())
		switch {
		case !ok:
		case err != nil:
			logger.WithError(err).Warn("remote history availability")
			body["history_remote"] = gin.H{"error": err.Error()}
		default:
			body["history_remote"] = a
		}
		c.JSON(http.StatusOK, body)
	})
	SetupRoutes(r.Group("/api"), price, hist, holdings, logger)
	return r
}

func SetupRoutes(r *gin.RouterGroup, price *pricing.Service, hist *history.Service, holdings store.HoldingStore, logger *logrus.Logger) *APIHandler {
	handler := &APIHandler{price: price, history: hist, holdings: holdings, log: logger}

	r.GET("/price", handler.GetPrice)
	r.POST("/price/refresh", handler.RefreshPrice)
	r.GET("/history", handler.GetCachedHistory)
	r.GET("/history/:window", handler.GetHistory)
	r.GET("/summary/:window", handler.GetSummary)
	r.DELETE("/history", handler.ClearHistory)

	h := r.Group("/holdings")
	{
		h.GET("", handler.ListHoldings)
		h.POST("", handler.CreateHolding)
		h.DELETE("/:id", handler.DeleteHolding)
	}
	return handler
}

type priceResponse struct {
	model.PriceSnapshot
	Formatted   string `json:"formatted"`
	Status      string `json:"status"`
	LastUpdated string `json:"last_updated"`
	Advisory    string `json:"advisory,omitempty"`
	Loading     bool   `json:"loading"`
}

func (h *APIHandler) priceResponse() priceResponse {
	return priceResponse{
		PriceSnapshot: h.price.Snapshot(),
		Formatted:     h.price.FormattedPrice(),
		Status:        h.price.TodayStatus(),
		LastUpdated:   h.price.FormattedLastUpdated(),
		Advisory:      h.price.Advisory(),
		Loading:       h.price.Loading(),
	}
}

func (h *APIHandler) GetPrice(c *gin.Context) {
	c.JSON(http.StatusOK, h.priceResponse())
}

// RefreshPrice runs the provider chain. ?force=true bypasses the daily gate.
func (h *APIHandler) RefreshPrice(c *gin.Context) {
	force := c.Query("force") == "true"
	_, err := h.price.Refresh(c.Request.Context(), force)
	switch {
	case err == nil:
		h.history.Invalidate()
		c.JSON(http.StatusOK, h.priceResponse())
	case errors.Is(err, pricing.ErrAlreadyUpdated):
		c.JSON(http.StatusConflict, h.priceResponse())
	case errors.Is(err, pricing.ErrStale):
		c.JSON(http.StatusOK, h.priceResponse())
	default:
		c.JSON(http.StatusServiceUnavailable, h.priceResponse())
	}
}

func (h *APIHandler) window(c *gin.Context) (model.Window, bool) {
	w, err := model.ParseWindow(c.Param("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return w, true
}

// GetCachedHistory returns the most recent series without resolving a
// window, summarized over the default window.
func (h *APIHandler) GetCachedHistory(c *gin.Context) {
	sum, points, _ := h.history.Cached(model.Window6M)
	if points == nil {
		points = []model.PricePoint{}
	}
	c.JSON(http.StatusOK, gin.H{"window": model.Window6M, "summary": sum, "points": points})
}

func (h *APIHandler) GetHistory(c *gin.Context) {
	w, ok := h.window(c)
	if !ok {
		return
	}
	points, err := h.history.History(c.Request.Context(), w)
	if err != nil {
		h.log.WithError(err).Error("load history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取历史数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": w, "label": w.Label(), "points": points})
}

func (h *APIHandler) GetSummary(c *gin.Context) {
	w, ok := h.window(c)
	if !ok {
		return
	}
	sum, points, err := h.history.Summary(c.Request.Context(), w)
	if err != nil {
		h.log.WithError(err).Error("summarize history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取历史数据失败"})
		return
	}
	ind := calculator.ComputeIndicators(points)
	c.JSON(http.StatusOK, gin.H{
		"window":  w,
		"label":   w.Label(),
		"summary": sum,
		"count":   len(points),
		"rsi14":   ind.RSI14,
		"ma30":    ind.MA30,
	})
}

func (h *APIHandler) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		h.log.WithError(err).Error("clear history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "清除失败"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListHoldings(c *gin.Context) {
	records, err := h.holdings.ListHoldings(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("list holdings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取记录失败"})
		return
	}
	if records == nil {
		records = []model.HoldingRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"records":   records,
		"portfolio": calculator.Valuate(records, h.price.CurrentPrice()),
	})
}

type createHoldingRequest struct {
	Name          string    `json:"name"`
	Weight        float64   `json:"weight" binding:"required,gt=0"`
	PurchasePrice float64   `json:"purchase_price" binding:"gte=0"`
	PurchaseDate  time.Time `json:"purchase_date"`
	Notes         string    `json:"notes"`
}

func (h *APIHandler) CreateHolding(c *gin.Context) {
	var req createHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if req.PurchaseDate.IsZero() {
		req.PurchaseDate = time.Now()
	}
	rec := model.NewHoldingRecord(req.Name, req.Weight, req.PurchasePrice, req.PurchaseDate)
	rec.Notes = req.Notes
	if err := h.holdings.UpsertHolding(c.Request.Context(), rec); err != nil {
		h.log.WithError(err).Error("create holding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存失败"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *APIHandler) DeleteHolding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.holdings.DeleteHolding(c.Request.Context(), id); err != nil {
		h.log.WithError(err).Error("delete holding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败"})
		return
	}
	c.Status(http.StatusNoContent)
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}
