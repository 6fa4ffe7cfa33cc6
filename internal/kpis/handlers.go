package kpis

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/httpx"
)

// RegisterRoutes mounts the KPI endpoints
func RegisterRoutes(r gin.IRouter, svc *Service) {
	r.GET("/kpis", ListHandler(svc))
	r.POST("/kpis", CreateHandler(svc))
	r.GET("/kpis/:id", GetHandler(svc))
	r.PUT("/kpis/:id", UpdateHandler(svc))
	r.DELETE("/kpis/:id", DeleteHandler(svc))
	r.POST("/kpis/:id/progress", ProgressHandler(svc))
}

// ListHandler lists KPIs newest first. ?id_proyecto=N narrows to one
// project; a non-numeric value is ignored.
func ListHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projectID *uint
		if raw := c.Query("id_proyecto"); raw != "" {
			if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
				id := uint(n)
				projectID = &id
			}
		}

		kpis, err := svc.List(c.Request.Context(), projectID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, kpis)
	}
}

// CreateHandler creates a KPI and answers 201
func CreateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in Input
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		kpi, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, kpi)
	}
}

// GetHandler returns one KPI
func GetHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		kpi, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, kpi)
	}
}

// UpdateHandler updates a KPI, keeping fields the body leaves out
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

		kpi, err := svc.Update(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, kpi)
	}
}

// DeleteHandler removes a KPI and answers 204
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

// ProgressHandler sets valor_actual only
func ProgressHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var in ProgressInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}
		kpi, err := svc.SetCurrentValue(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, kpi)
	}
}
