package delivery

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"furnistore/internal/domain"
	"furnistore/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ImageHandler struct {
	useCase   usecase.ImageUseCase
	uploadDir string
	log       *logrus.Logger
}

func NewImageHandler(uc usecase.ImageUseCase, uploadDir string, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{
		useCase:   uc,
		uploadDir: uploadDir,
		log:       logger,
	}
}

// RegisterOrderImageRoutes covers order-attachment management; listing is
// public (guests follow an emailed link), mutation sits behind the
// admin group registered separately.
func (h *ImageHandler) RegisterOrderImageRoutes(router gin.IRouter) {
	router.GET("/orders/:id/images", h.ListOrderImages)
}

func (h *ImageHandler) RegisterAdminRoutes(router gin.IRouter) {
	router.POST("/orders/:id/images", h.UploadOrderImage)
	router.DELETE("/orders/:id/images/:imageId", h.DeleteOrderImage)
	router.POST("/products/:id/images", h.UploadProductImage)
	router.DELETE("/products/:id/images/:imageId", h.DeleteProductImage)
}

func (h *ImageHandler) ListOrderImages(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	images, err := h.useCase.ListOrderImages(c.Request.Context(), orderID)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to list images for order %d: %v", orderID, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *ImageHandler) UploadOrderImage(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	filePath, id, ok := h.saveUpload(c)
	if !ok {
		return
	}

	image := &domain.OrderImage{ID: id, OrderID: orderID, FilePath: filePath}
	stored, err := h.useCase.StoreOrderImage(c.Request.Context(), image)
	if err != nil {
		h.removeFile(filePath)
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to store order image for order %d: %v", orderID, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": stored})
}

func (h *ImageHandler) DeleteOrderImage(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}
	imageID := c.Param("imageId")

	filePath, err := h.useCase.RemoveOrderImage(c.Request.Context(), orderID, imageID)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete image %s from order %d: %v", imageID, orderID, err)
		RespondError(c, statusCode, err.Error())
		return
	}
	h.removeFile(filePath)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *ImageHandler) UploadProductImage(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sortOrder", "0"))

	filePath, id, ok := h.saveUpload(c)
	if !ok {
		return
	}

	image := &domain.ProductImage{ID: id, ProductID: productID, FilePath: filePath, SortOrder: sortOrder}
	stored, err := h.useCase.StoreProductImage(c.Request.Context(), image)
	if err != nil {
		h.removeFile(filePath)
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to store product image for product %d: %v", productID, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": stored})
}

func (h *ImageHandler) DeleteProductImage(c *gin.Context) {
	imageID := c.Param("imageId")

	filePath, err := h.useCase.RemoveProductImage(c.Request.Context(), imageID)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to delete product image %s: %v", imageID, err)
		RespondError(c, statusCode, err.Error())
		return
	}
	h.removeFile(filePath)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// saveUpload writes the multipart "image" field to the upload dir under a
// fresh uuid filename and reports the stored path and id.
func (h *ImageHandler) saveUpload(c *gin.Context) (string, string, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Image file is required")
		return "", "", false
	}

	id := uuid.New().String()
	filename := id + filepath.Ext(file.Filename)
	dst := filepath.Join(h.uploadDir, filename)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.log.Errorf("Failed to save uploaded file %s: %v", file.Filename, err)
		RespondError(c, http.StatusInternalServerError, "Failed to store uploaded file")
		return "", "", false
	}

	return dst, id, true
}

// Orphaned files are tolerable; the metadata row is the source of truth.
func (h *ImageHandler) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.log.Warnf("Failed to remove file %s: %v", path, err)
	}
}
