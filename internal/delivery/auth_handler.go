package delivery

import (
	"net/http"

	"furnistore/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase usecase.UserUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc usecase.UserUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.useCase.RegisterUser(c.Request.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Registration failed for %s: %v", body.Email, err)
		RespondError(c, statusCode, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	auth, err := h.useCase.AuthenticateUser(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		h.log.Warnf("Login failed for %s: %v", body.Email, err)
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": auth.Token, "user": auth.User})
}
