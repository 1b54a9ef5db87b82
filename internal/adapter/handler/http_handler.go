package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/workshop-parts/internal/core/catalog"
	"github.com/rl1809/workshop-parts/internal/core/domain"
	"github.com/rl1809/workshop-parts/internal/core/service"
)

type HTTPHandler struct {
	inventory *service.InventoryService
	orders    *service.OrderService
	logger    *zap.Logger
}

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

type minStockRequest struct {
	MinStock int `json:"minStock"`
}

type addItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type submitRequest struct {
	Notes *string `json:"notes"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func NewHTTPHandler(inventory *service.InventoryService, orders *service.OrderService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, orders: orders, logger: logger}
}

func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	inv := api.Group("/inventory")
	inv.GET("", h.ListInventory)
	inv.POST("", h.CreateItem)
	inv.GET("/low-stock", h.LowStock)
	inv.POST("/import", h.ImportQuote)
	inv.GET("/:id", h.GetItem)
	inv.POST("/:id/adjust", h.AdjustStock)
	inv.PUT("/:id/min-stock", h.SetMinStock)

	ord := api.Group("/orders")
	ord.GET("", h.ListOrders)
	ord.PATCH("/:id/status", h.UpdateStatus)
	ord.GET("/draft", h.GetDraft)
	ord.POST("/draft", h.StartDraft)
	ord.DELETE("/draft", h.DiscardDraft)
	ord.POST("/draft/items", h.AddItem)
	ord.PATCH("/draft/items/:itemId", h.UpdateItemQuantity)
	ord.DELETE("/draft/items/:itemId", h.RemoveItem)
	ord.POST("/draft/submit", h.SubmitDraft)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) ListInventory(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context())
	h.respond(c, http.StatusOK, items, err)
}

func (h *HTTPHandler) LowStock(c *gin.Context) {
	items, err := h.inventory.LowStock(c.Request.Context())
	h.respond(c, http.StatusOK, items, err)
}

func (h *HTTPHandler) GetItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, item, err)
}

func (h *HTTPHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemInput
	if !bind(c, &req) {
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), req)
	h.respond(c, http.StatusCreated, item, err)
}

func (h *HTTPHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.inventory.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	h.respond(c, http.StatusOK, item, err)
}

func (h *HTTPHandler) SetMinStock(c *gin.Context) {
	var req minStockRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.inventory.SetMinStock(c.Request.Context(), c.Param("id"), req.MinStock)
	h.respond(c, http.StatusOK, item, err)
}

func (h *HTTPHandler) ImportQuote(c *gin.Context) {
	var quote catalog.Quote
	if !bind(c, &quote) {
		return
	}
	items, err := h.inventory.ImportQuote(c.Request.Context(), &quote)
	h.respond(c, http.StatusCreated, items, err)
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	h.respond(c, http.StatusOK, orders, err)
}

func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	h.respond(c, http.StatusOK, order, err)
}

func (h *HTTPHandler) GetDraft(c *gin.Context) {
	order, err := h.orders.Draft(c.Request.Context())
	h.respond(c, http.StatusOK, order, err)
}

func (h *HTTPHandler) StartDraft(c *gin.Context) {
	var req domain.SupplierRef
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.StartDraft(c.Request.Context(), req)
	h.respond(c, http.StatusCreated, order, err)
}

func (h *HTTPHandler) DiscardDraft(c *gin.Context) {
	err := h.orders.DiscardDraft(c.Request.Context())
	h.respond(c, http.StatusOK, nil, err)
}

func (h *HTTPHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.AddItem(c.Request.Context(), req.ItemID, req.Quantity)
	h.respond(c, http.StatusOK, order, err)
}

func (h *HTTPHandler) UpdateItemQuantity(c *gin.Context) {
	var req quantityRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.UpdateItemQuantity(c.Request.Context(), c.Param("itemId"), req.Quantity)
	h.respond(c, http.StatusOK, order, err)
}

func (h *HTTPHandler) RemoveItem(c *gin.Context) {
	order, err := h.orders.RemoveItem(c.Request.Context(), c.Param("itemId"))
	h.respond(c, http.StatusOK, order, err)
}

func (h *HTTPHandler) SubmitDraft(c *gin.Context) {
	var req submitRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	order, err := h.orders.SubmitDraft(c.Request.Context(), req.Notes)
	h.respond(c, http.StatusAccepted, order, err)
}

func (h *HTTPHandler) respond(c *gin.Context, status int, data interface{}, err error) {
	if err != nil {
		code, message := errorStatus(err)
		if code == http.StatusInternalServerError {
			h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(code, response{Success: false, Message: message})
		return
	}
	c.JSON(status, response{Success: true, Data: data})
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return false
	}
	return true
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrNoDraftOrder):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrDraftExists),
		errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrConcurrentUpdate):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// AccessLog logs every request once it has been served.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
