package projects

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/httpx"
)

// RegisterRoutes mounts the project endpoints
func RegisterRoutes(r gin.IRouter, svc *Service) {
	r.GET("/proyectos", ListHandler(svc))
	r.POST("/proyectos", CreateHandler(svc))
	r.GET("/proyectos/:id", GetHandler(svc))
	r.PUT("/proyectos/:id", UpdateHandler(svc))
	r.DELETE("/proyectos/:id", DeleteHandler(svc))
}

// ListHandler lists every project
func ListHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

// CreateHandler creates a project and answers 201
func CreateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in Input
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// GetHandler returns one project
func GetHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// UpdateHandler replaces a project
func UpdateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var in Input
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		p, err := svc.Update(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// DeleteHandler removes a project and answers 204
func DeleteHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		if err := svc.Delete(c.Request.Context(), id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
