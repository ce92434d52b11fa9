package handler

import (
	"errors"
	"net/http"

	"github.com/ddouble/money-exchange/internal/exchange"
	"github.com/ddouble/money-exchange/internal/model"
	"github.com/ddouble/money-exchange/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPHandler exposes the form controller over HTTP. It is a thin
// presentation adapter: every endpoint forwards one user intent and returns
// the derived view.
type HTTPHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

// NewHTTPHandler creates a new HTTPHandler
func NewHTTPHandler(sessions *service.SessionService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// SetupRoutes configures the HTTP routes
func (h *HTTPHandler) SetupRoutes(r *gin.Engine) {
	// Health checks
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	api := r.Group("/api")
	{
		api.GET("/currencies", h.GetCurrencies)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.CreateSession)
			sessions.GET("/:id", h.GetSession)
			sessions.DELETE("/:id", h.CloseSession)
			sessions.PUT("/:id/amount", h.SetAmount)
			sessions.PUT("/:id/source", h.SetSource)
			sessions.PUT("/:id/destination", h.SetDestination)
			sessions.POST("/:id/switch", h.SwitchCurrencies)
			sessions.POST("/:id/exchange", h.SubmitExchange)
			sessions.POST("/:id/dismiss", h.DismissSuccess)
		}
	}
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type currencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

// Health returns the health status
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "money-exchange",
	})
}

// Ready returns the readiness status, checking the cache dependency
func (h *HTTPHandler) Ready(c *gin.Context) {
	if err := h.sessions.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "money-exchange",
	})
}

// GetCurrencies returns the fixed currency catalog
func (h *HTTPHandler) GetCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": model.Catalog})
}

// CreateSession opens a new form session
func (h *HTTPHandler) CreateSession(c *gin.Context) {
	id, view := h.sessions.CreateSession()
	c.JSON(http.StatusCreated, gin.H{"sessionId": id, "state": view})
}

// GetSession returns the current derived view of a session
func (h *HTTPHandler) GetSession(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": controller.View()})
}

// CloseSession drops a session
func (h *HTTPHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.CloseSession(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAmount applies an amount-changed intent
func (h *HTTPHandler) SetAmount(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	controller.SetAmount(req.Amount)
	c.JSON(http.StatusOK, gin.H{"state": controller.View()})
}

// SetSource applies a source-currency-changed intent
func (h *HTTPHandler) SetSource(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := controller.SetSource(req.Currency); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": controller.View()})
}

// SetDestination applies a destination-currency-changed intent
func (h *HTTPHandler) SetDestination(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := controller.SetDestination(req.Currency); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": controller.View()})
}

// SwitchCurrencies swaps source and destination
func (h *HTTPHandler) SwitchCurrencies(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	controller.Switch()
	c.JSON(http.StatusOK, gin.H{"state": controller.View()})
}

// SubmitExchange starts the simulated exchange
func (h *HTTPHandler) SubmitExchange(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	if err := controller.Submit(); err != nil {
		var unavailable exchange.ErrSubmitUnavailable
		if errors.As(err, &unavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": controller.View()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"state": controller.View()})
}

// DismissSuccess acknowledges the success notice
func (h *HTTPHandler) DismissSuccess(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	controller.DismissSuccess()
	c.JSON(http.StatusOK, gin.H{"state": controller.View()})
}

// controller resolves the session id from the path, answering 404 itself
// when the session is unknown
func (h *HTTPHandler) controller(c *gin.Context) (*exchange.Controller, bool) {
	controller, err := h.sessions.Controller(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return controller, true
}
