package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salon-server/middleware"
	"salon-server/models"
	"salon-server/services"
)

// LoginRequest represents the admin sign in request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for rotation or logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	*services.TokenPair
	User *models.User `json:"user,omitempty"`
}

// RegisterAdminAuthRoutes registers admin authentication routes
func RegisterAdminAuthRoutes(rg *gin.RouterGroup, a *API) {
	rg.POST("/login", a.login)
	rg.POST("/refresh", a.refresh)
	rg.POST("/logout", a.logout)
	rg.GET("/me", middleware.AdminAuthMiddleware(a.DB), me)
}

func authFailed(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "unauthorized",
		"message": message,
	})
}

func (a *API) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	pair, user, err := a.Auth.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			authFailed(c, err.Error())
			return
		}
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, AuthResponse{TokenPair: pair, User: user})
}

func (a *API) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh_token is required")
		return
	}

	pair, err := a.Auth.Refresh(c.Request.Context(), req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			authFailed(c, err.Error())
			return
		}
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, AuthResponse{TokenPair: pair})
}

func (a *API) logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh_token is required")
		return
	}

	// Logging out twice is not an error for the console.
	if err := a.Auth.Revoke(c.Request.Context(), req.RefreshToken); err != nil && !errors.Is(err, services.ErrInvalidRefreshToken) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		authFailed(c, "not signed in")
		return
	}
	respondData(c, http.StatusOK, user)
}
