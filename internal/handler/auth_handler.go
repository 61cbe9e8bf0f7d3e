package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboard/internal/dto"
	"github.com/onboardhq/onboard/internal/middleware"
	"github.com/onboardhq/onboard/internal/service"
	"github.com/onboardhq/onboard/pkg/response"
	"github.com/onboardhq/onboard/pkg/validator"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Verify is called by the frontend on load to confirm a stored token is
// still good. All failures answer 401 with valid:false.
func (h *AuthHandler) Verify(c *gin.Context) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, dto.VerifyResponse{Valid: false, Error: "token not provided"})
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.VerifyResponse{Valid: false, Error: "invalid or expired token"})
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResponse{
		Valid: true,
		User: &dto.UserProfile{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString("token")); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "session closed"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input dto.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := response.GetCurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, input); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated"})
}
