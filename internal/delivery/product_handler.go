package delivery

import (
	"net/http"
	"strconv"

	"furnistore/internal/domain"
	"furnistore/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/products", h.ListProducts)
	router.GET("/products/:slug", h.GetProductBySlug)
	router.GET("/categories", h.ListCategories)
}

func (h *ProductHandler) RegisterAdminRoutes(router gin.IRouter) {
	router.POST("/products", h.CreateProduct)
	router.PUT("/products/:id", h.UpdateProduct)
	router.DELETE("/products/:id", h.DeleteProduct)
	router.POST("/categories", h.CreateCategory)
	router.DELETE("/categories/:id", h.DeleteCategory)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, offset := pageParams(c)
	filter := domain.ProductFilter{
		CategorySlug: c.Query("category"),
		Featured:     boolQuery(c, "featured"),
		New:          boolQuery(c, "new"),
		OnSale:       boolQuery(c, "sale"),
		Limit:        limit,
		Offset:       offset,
	}

	products, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.log.Errorf("Failed to list products: %v", err)
		RespondError(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.useCase.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to get product '%s': %v", slug, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list categories: %v", err)
		RespondError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var body struct {
		Slug            string  `json:"slug"`
		Name            string  `json:"name"`
		Description     string  `json:"description"`
		Price           float64 `json:"price"`
		OriginalPrice   float64 `json:"originalPrice"`
		DiscountPercent int     `json:"discountPercent"`
		Stock           int     `json:"stock"`
		IsFeatured      bool    `json:"isFeatured"`
		IsNew           bool    `json:"isNew"`
		IsOnSale        bool    `json:"isOnSale"`
		CategoryID      int     `json:"categoryId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product := &domain.Product{
		Slug:            body.Slug,
		Name:            body.Name,
		Description:     body.Description,
		Price:           body.Price,
		OriginalPrice:   body.OriginalPrice,
		DiscountPercent: body.DiscountPercent,
		Stock:           body.Stock,
		IsFeatured:      body.IsFeatured,
		IsNew:           body.IsNew,
		IsOnSale:        body.IsOnSale,
		CategoryID:      body.CategoryID,
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), product)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to create product '%s': %v", body.Name, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": created})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := make(map[string]interface{}, len(body))
	for key, value := range body {
		if column, ok := productColumn(key); ok {
			updates[column] = value
		}
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), id, updates)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to update product %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": updated})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete product %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var body struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), &domain.Category{Slug: body.Slug, Name: body.Name})
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to create category '%s': %v", body.Name, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": created})
}

func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	if err := h.useCase.DeleteCategory(c.Request.Context(), id); err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete category %d: %v", id, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func productColumn(jsonKey string) (string, bool) {
	switch jsonKey {
	case "slug", "name", "description", "price", "stock":
		return jsonKey, true
	case "originalPrice":
		return "original_price", true
	case "discountPercent":
		return "discount_percent", true
	case "isFeatured":
		return "is_featured", true
	case "isNew":
		return "is_new", true
	case "isOnSale":
		return "is_on_sale", true
	case "categoryId":
		return "category_id", true
	default:
		return "", false
	}
}

func boolQuery(c *gin.Context, name string) *bool {
	raw, exists := c.GetQuery(name)
	if !exists {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
