package delivery

import (
	"net/http"
	"strconv"

	"furnistore/internal/domain"
	"furnistore/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AddressHandler struct {
	useCase usecase.AddressUseCase
	log     *logrus.Logger
}

func NewAddressHandler(uc usecase.AddressUseCase, logger *logrus.Logger) *AddressHandler {
	return &AddressHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterRoutes expects an authenticated group; the user id always comes
// from the session, never the payload.
func (h *AddressHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/addresses", h.ListAddresses)
	router.POST("/addresses", h.CreateAddress)
	router.PUT("/addresses/:id", h.UpdateAddress)
	router.DELETE("/addresses/:id", h.DeleteAddress)
}

type addressRequest struct {
	Title      string `json:"title"`
	Recipient  string `json:"recipient"`
	Line       string `json:"line"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"isDefault"`
}

func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	addresses, err := h.useCase.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorf("Failed to list addresses for user %d: %v", userID, err)
		RespondError(c, http.StatusInternalServerError, "Failed to retrieve addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	var body addressRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	address := &domain.Address{
		UserID:     userID,
		Title:      body.Title,
		Recipient:  body.Recipient,
		Line:       body.Line,
		City:       body.City,
		PostalCode: body.PostalCode,
		Country:    body.Country,
		Phone:      body.Phone,
		IsDefault:  body.IsDefault,
	}

	created, err := h.useCase.CreateAddress(c.Request.Context(), address)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to create address for user %d: %v", userID, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"address": created})
}

func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "User identification missing")
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid address ID format")
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := make(map[string]interface{}, len(body))
	for key, value := range body {
		if column, ok := addressColumn(key); ok {
			updates[column] = value
		}
	}

	updated, err := h.useCase.UpdateAddress(c.Request.Context(), id, userID, updates)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to update address %d for user %d: %v", id, userID, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": updated})
}

func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "User identification missing")
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid address ID format")
		return
	}

	if err := h.useCase.DeleteAddress(c.Request.Context(), id, userID); err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete address %d for user %d: %v", id, userID, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func addressColumn(jsonKey string) (string, bool) {
	switch jsonKey {
	case "title", "recipient", "line", "city", "country", "phone":
		return jsonKey, true
	case "postalCode":
		return "postal_code", true
	case "isDefault":
		return "is_default", true
	default:
		return "", false
	}
}
