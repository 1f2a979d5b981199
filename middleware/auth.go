package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salon-server/models"
	"salon-server/utils"
)

// Context keys set by the auth middlewares
const (
	ContextUser   = "user"
	ContextUserID = "user_id"
)

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "unauthorized",
		"message": message,
	})
	c.Abort()
}

// authenticate resolves a token to an active console account.
func authenticate(c *gin.Context, db *gorm.DB, tokenString string) bool {
	claims, err := utils.VerifyToken(tokenString)
	if err != nil {
		unauthorized(c, "Token is invalid or expired")
		return false
	}

	var user models.User
	if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
		unauthorized(c, "User associated with token not found")
		return false
	}
	if !user.CanManage() {
		unauthorized(c, "User account is deactivated")
		return false
	}

	c.Set(ContextUser, user)
	c.Set(ContextUserID, user.ID)
	return true
}

// AdminAuthMiddleware requires a Bearer access token of an admin account
func AdminAuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			unauthorized(c, "Token must be in format: Bearer <token>")
			return
		}

		if !authenticate(c, db, tokenString) {
			return
		}
		c.Next()
	}
}

// WebSocketAuthMiddleware validates the access token passed in the query
// string, since browsers cannot set headers on a WebSocket upgrade.
func WebSocketAuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			log.Printf("🔌 WebSocket upgrade without token from %s", c.ClientIP())
			unauthorized(c, "Please provide a valid token in query parameters")
			return
		}

		if !authenticate(c, db, tokenString) {
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account stored by the auth middlewares
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
