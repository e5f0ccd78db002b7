package delivery

import (
	"net/http"
	"strconv"

	"furnistore/internal/domain"
	"furnistore/internal/middleware"
	"furnistore/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterRoutes wires the public order surface; the group is expected to
// carry optional authentication so guests can check out and track.
func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/orders", h.CreateOrder)
	router.GET("/orders/:id", h.GetOrderByID)
	router.GET("/orders/:id/guest", h.GetGuestOrder)
	router.GET("/track-order", h.TrackOrder)
}

func (h *OrderHandler) RegisterUserRoutes(router gin.IRouter) {
	router.GET("/orders", h.ListMyOrders)
}

func (h *OrderHandler) RegisterAdminRoutes(router gin.IRouter) {
	router.GET("/orders", h.ListOrders)
	router.PUT("/orders/:id/status", h.UpdateOrderStatus)
	router.PUT("/orders/:id/payment-status", h.UpdatePaymentStatus)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req usecase.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for create order: %v", err)
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// An authenticated session wins over whatever user id the payload
	// claims; absent both, the order is a guest checkout.
	if userID, ok := contextUserID(c); ok {
		req.UserID = &userID
	}

	order, err := h.useCase.Checkout(c.Request.Context(), &req)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to create order: %v", err)
		RespondError(c, statusCode, err.Error())
		return
	}

	h.log.Infof("Order %d created, tracking %s", order.ID, order.TrackingNumber)
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) TrackOrder(c *gin.Context) {
	code := c.Query("tracking")
	if code == "" {
		RespondError(c, http.StatusBadRequest, "Tracking number is required")
		return
	}

	order, err := h.useCase.TrackOrder(c.Request.Context(), code)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Tracking lookup failed for '%s': %v", code, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	// Authenticated customers only see their own orders; a wrong owner is
	// indistinguishable from a missing order.
	var ownerFilter *int
	if userID, ok := contextUserID(c); ok {
		if role, _ := c.Get(middleware.ContextRoleKey); role != domain.RoleAdmin {
			ownerFilter = &userID
		}
	}

	order, err := h.useCase.GetOrderByID(c.Request.Context(), id, ownerFilter)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to get order by ID %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) GetGuestOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}
	phone := c.Query("phone")
	if phone == "" {
		RespondError(c, http.StatusBadRequest, "Phone is required")
		return
	}

	order, err := h.useCase.GetGuestOrder(c.Request.Context(), id, phone)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Guest lookup failed for order %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	limit, offset := pageParams(c)
	orders, err := h.useCase.ListOrdersByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list orders for user %d: %v", userID, err)
		RespondError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit, offset := pageParams(c)
	orders, err := h.useCase.ListOrders(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list orders: %v", err)
		RespondError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var body struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: 'status' field is required")
		return
	}

	order, err := h.useCase.UpdateOrderStatus(c.Request.Context(), id, *body.Status)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to update status for order %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var body struct {
		PaymentStatus *domain.PaymentStatus `json:"paymentStatus"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PaymentStatus == nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: 'paymentStatus' field is required")
		return
	}

	order, err := h.useCase.UpdatePaymentStatus(c.Request.Context(), id, *body.PaymentStatus)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to update payment status for order %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func contextUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := v.(int)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func pageParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
