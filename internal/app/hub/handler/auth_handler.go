package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/service"
)

// AuthHandler обслуживает эндпоинты аутентификации.
// Все ответы используют конверт AuthResponse с флагом success.
type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.AuthResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.AuthResponse{
			Success: false,
			Error:   formatValidationError(err),
		})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, entity.AuthResponse{
				Success: false,
				Error:   ve.Error(),
			})
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusConflict, entity.AuthResponse{
				Success: false,
				Error:   "User with this username already exists",
			})
		default:
			c.JSON(http.StatusInternalServerError, entity.AuthResponse{
				Success: false,
				Error:   "Failed to register user",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.AuthResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.AuthResponse{
			Success: false,
			Error:   formatValidationError(err),
		})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, entity.AuthResponse{
				Success: false,
				Error:   "Invalid username or password",
			})
		case errors.Is(err, service.ErrAccountInactive):
			c.JSON(http.StatusForbidden, entity.AuthResponse{
				Success: false,
				Error:   "Your account has been deactivated",
			})
		default:
			c.JSON(http.StatusInternalServerError, entity.AuthResponse{
				Success: false,
				Error:   "Failed to login",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, ok := currentSessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.AuthResponse{
			Success: false,
			Error:   "Unauthorized",
		})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, entity.AuthResponse{
			Success: false,
			Error:   "Failed to logout",
		})
		return
	}

	c.JSON(http.StatusOK, entity.AuthResponse{Success: true})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
