package handler

import (
	"net/http"

	"anoa.com/tanyajawab/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes operational controls: listing background jobs and
// triggering one outside its schedule.
type AdminHandler struct {
	scheduler *scheduler.Scheduler
}

func NewAdminHandler(sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{scheduler: sched}
}

func (h *AdminHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.scheduler.RegisteredJobs()})
}

func (h *AdminHandler) RunJob(c *gin.Context) {
	name := c.Param("name")

	if err := h.scheduler.RunByName(c.Request.Context(), name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job finished", "job": name})
}
