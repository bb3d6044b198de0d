package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/service"
	"farmershub/internal/app/hub/util"
)

// Ключи контекста запроса
const (
	ctxSessionID = "session_id"
	ctxUser      = "user"
)

// AuthMiddleware проверяет токен и наличие живой сессии.
// Токен действителен только пока сессия существует в Redis:
// logout удаляет сессию и тем самым отзывает еще не истекший токен.
type AuthMiddleware struct {
	tokenManager *util.TokenManager
	authService  service.AuthServiceInterface
}

func NewAuthMiddleware(tokenManager *util.TokenManager, authService service.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		tokenManager: tokenManager,
		authService:  authService,
	}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := m.tokenManager.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, util.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"message": "Token has expired",
				})
				c.Abort()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid token",
			})
			c.Abort()
			return
		}

		// Сессия могла быть завершена через logout или истечь в Redis
		sessionUser, err := m.authService.GetCurrentUser(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"message": "Session has expired",
				})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to validate session",
			})
			c.Abort()
			return
		}

		c.Set(ctxSessionID, claims.SessionID)
		c.Set(ctxUser, sessionUser)

		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Unauthorized",
			})
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// currentUser достает пользователя сессии из контекста запроса
func currentUser(c *gin.Context) (*entity.SessionUser, bool) {
	value, exists := c.Get(ctxUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*entity.SessionUser)
	return user, ok
}

// currentSessionID достает идентификатор сессии из контекста запроса
func currentSessionID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ctxSessionID)
	if !exists {
		return "", false
	}

	sessionID, ok := value.(string)
	return sessionID, ok
}
