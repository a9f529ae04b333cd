package handler

import (
	"net/http"
	"strconv"
	"time"

	"anoa.com/tanyajawab/internal/model"
	"anoa.com/tanyajawab/internal/service"
	"anoa.com/tanyajawab/pkg/response"
	"anoa.com/tanyajawab/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GamificationHandler struct {
	awardService service.AwardService
	xpService    service.XpService
	badgeService service.BadgeService
	taskService  service.TaskService
}

func NewGamificationHandler(awardService service.AwardService, xpService service.XpService, badgeService service.BadgeService, taskService service.TaskService) *GamificationHandler {
	return &GamificationHandler{
		awardService: awardService,
		xpService:    xpService,
		badgeService: badgeService,
		taskService:  taskService,
	}
}

type awardRequest struct {
	UserID    uuid.UUID              `json:"user_id" binding:"required"`
	EventType string                 `json:"event_type" binding:"required"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Award is the admin/internal trigger for XP events coming from other
// services (question created, answer verified, ...).
func (h *GamificationHandler) Award(c *gin.Context) {
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.awardService.AwardAndProcess(c.Request.Context(), req.UserID, req.EventType, req.Metadata, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

type awardBadgeRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Slug   string    `json:"slug" binding:"required"`
}

// AwardBadge grants a badge explicitly, outside the milestone triggers
// (event badges, moderation rewards). Unknown slugs are a soft no-op.
func (h *GamificationHandler) AwardBadge(c *gin.Context) {
	var req awardBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	badge, err := h.badgeService.CheckAndAward(c.Request.Context(), req.UserID, req.Slug, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if badge == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "message": "badge not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badge})
}

func (h *GamificationHandler) GetProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progress, err := h.xpService.Progress(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progress})
}

func (h *GamificationHandler) GetLevels(c *gin.Context) {
	levels, err := h.xpService.Levels(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": levels})
}

func (h *GamificationHandler) GetXpSummary(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	summary, err := h.xpService.Summary(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *GamificationHandler) GetXpHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, total, err := h.xpService.History(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": logs,
		"meta": gin.H{
			"current_page": page,
			"total_items":  total,
		},
	})
}

func (h *GamificationHandler) GetBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.badgeService.UserBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *GamificationHandler) GetTasks(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	frequency := c.DefaultQuery("frequency", model.FrequencyDaily)
	if frequency != model.FrequencyDaily && frequency != model.FrequencyWeekly {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frequency must be daily or weekly"})
		return
	}

	tasks, err := h.taskService.GenerateForUser(c.Request.Context(), userID, frequency, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (h *GamificationHandler) CompleteTask(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	userTask, err := h.taskService.Complete(c.Request.Context(), uint(taskID), userID, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userTask})
}
