package notifications

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/httpx"
)

// MarkReadInput is the body of POST /notificaciones/:id/leida
type MarkReadInput struct {
	Read *bool `json:"leida" binding:"required"`
}

// RegisterRoutes mounts the notification endpoints
func RegisterRoutes(r gin.IRouter, svc *Service) {
	r.GET("/usuarios/:id/notificaciones", ListHandler(svc))
	r.GET("/usuarios/:id/notificaciones/config", GetPreferencesHandler(svc))
	r.PUT("/usuarios/:id/notificaciones/config", SetPreferencesHandler(svc))
	r.POST("/notificaciones/:id/leida", MarkReadHandler(svc))
}

// ParseListFilter reads ?leida=true|false&limit=N. Any other value is ignored.
func ParseListFilter(c *gin.Context) ListFilter {
	var filter ListFilter
	switch c.Query("leida") {
	case "true":
		read := true
		filter.Read = &read
	case "false":
		read := false
		filter.Read = &read
	}
	if raw := c.Query("limit"); raw != "" && isDigits(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = &n
		}
	}
	return filter
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ListHandler lists a user's notifications, newest first
func ListHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		list, err := svc.ListForUser(c.Request.Context(), userID, ParseListFilter(c))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// MarkReadHandler sets the read flag of one notification
func MarkReadHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var in MarkReadInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		n, err := svc.MarkRead(c.Request.Context(), id, *in.Read)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

// GetPreferencesHandler returns a user's preference rows
func GetPreferencesHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		prefs, err := svc.Preferences(c.Request.Context(), userID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, prefs)
	}
}

// SetPreferencesHandler upserts a batch of [{tipo, activo}] items
func SetPreferencesHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		raw, err := c.GetRawData()
		if err != nil {
			httpx.Error(c, apperr.Validation("non_field_errors", "No se pudo leer el cuerpo"))
			return
		}

		prefs, err := svc.SetPreferences(c.Request.Context(), userID, raw)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, prefs)
	}
}
