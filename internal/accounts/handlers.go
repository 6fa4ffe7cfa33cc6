package accounts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/httpx"
)

// RegisterRoutes mounts the auth and user directory endpoints
func RegisterRoutes(r gin.IRouter, svc *Service) {
	r.POST("/auth/login", LoginHandler(svc))
	r.POST("/auth/register", RegisterHandler(svc))
	r.GET("/usuarios", ListUsersHandler(svc))
}

// LoginHandler checks credentials and returns the public user fields
func LoginHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in LoginInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		user, err := svc.Login(c.Request.Context(), in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// RegisterHandler creates a new active account
func RegisterHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in RegisterInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		user, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// ListUsersHandler lists active users
func ListUsersHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListActive(c.Request.Context())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
