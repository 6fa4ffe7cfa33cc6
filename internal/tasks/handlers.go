package tasks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/httpx"
)

// RegisterRoutes mounts the task and time-log endpoints
func RegisterRoutes(r gin.IRouter, svc *Service) {
	r.GET("/proyectos/:id/tareas", ListByProjectHandler(svc))
	r.POST("/tareas", CreateHandler(svc))
	r.PUT("/tareas/:id", UpdateHandler(svc))
	r.POST("/tareas/:id/assign", AssignHandler(svc))
	r.POST("/tareas/:id/duedate", DueDateHandler(svc))
	r.GET("/tareas/:id/tiempo", ListTimeHandler(svc))
	r.POST("/tareas/:id/tiempo", LogTimeHandler(svc))
	r.POST("/tareas/:id/complete", CompleteHandler(svc))
	r.POST("/tareas/:id/progress", ProgressHandler(svc))
	r.DELETE("/tareas/:id/delete", DeleteHandler(svc))
}

// ListByProjectHandler lists the tasks of a project with total_horas
func ListByProjectHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		tasks, err := svc.ListByProject(c.Request.Context(), projectID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

// CreateHandler creates a task and answers 201
func CreateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in Input
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		task, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

// UpdateHandler replaces a task
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

		task, err := svc.Update(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// AssignHandler changes the assignee
func AssignHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var in AssignInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		task, err := svc.Assign(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// DueDateHandler sets or clears fecha_vencimiento
func DueDateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var in DueDateInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		task, err := svc.SetDueDate(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// ListTimeHandler lists time entries, optionally filtered by
// ?fecha=YYYY-MM-DD or ?desde=YYYY-MM-DD&hasta=YYYY-MM-DD
func ListTimeHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		filter := ParseTimeFilter(c.Query("fecha"), c.Query("desde"), c.Query("hasta"))
		entries, err := svc.ListTime(c.Request.Context(), id, filter)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// LogTimeHandler records hours and answers the new total
func LogTimeHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var in TimeInput
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}

		total, err := svc.LogTime(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "total_horas": total})
	}
}

// CompleteHandler marks the task Completada
func CompleteHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.ParseID(c, "id")
		if err != nil {
			httpx.Error(c, err)
			return
		}

		task, err := svc.Complete(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// ProgressHandler sets progreso and estado
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

		task, err := svc.SetProgress(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// DeleteHandler removes a task and its time entries
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
