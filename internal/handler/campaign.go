package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/hub"
	"github.com/jocilejr/whatsbot/internal/model"
	"github.com/jocilejr/whatsbot/internal/store"
)

type CampaignHandler struct {
	Store *store.Store
	Hub   *hub.Hub
}

type campaignBody struct {
	Name         string     `json:"name" binding:"required"`
	Message      string     `json:"message" binding:"required"`
	InstanceID   string     `json:"instance_id" binding:"required"`
	TargetGroups []string   `json:"target_groups"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Status       string     `json:"status" binding:"omitempty,oneof=draft active completed paused"`
}

func (b campaignBody) input() store.CampaignInput {
	return store.CampaignInput{
		Name:         b.Name,
		Message:      b.Message,
		DeviceID:     b.InstanceID,
		TargetGroups: b.TargetGroups,
		ScheduledAt:  b.ScheduledAt,
		Status:       model.CampaignStatus(b.Status),
	}
}

func (h *CampaignHandler) List(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Store.ListCampaigns(ownerID))
}

func (h *CampaignHandler) Create(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	var body campaignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	camp, err := h.Store.CreateCampaign(c.Request.Context(), ownerID, body.input())
	if err != nil {
		respondError(c, err, "Instance not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventCampaignUpdated, camp)
	c.JSON(http.StatusOK, camp)
}

func (h *CampaignHandler) Update(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	var body campaignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	camp, err := h.Store.UpdateCampaign(c.Request.Context(), ownerID, c.Param("campaignId"), body.input())
	if err != nil {
		respondError(c, err, "Campaign not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventCampaignUpdated, camp)
	c.JSON(http.StatusOK, camp)
}

func (h *CampaignHandler) Delete(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	campaignID := c.Param("campaignId")
	deleted, err := h.Store.DeleteCampaign(c.Request.Context(), ownerID, campaignID)
	if err != nil {
		respondError(c, err, "Campaign not found")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventCampaignDeleted, gin.H{"id": campaignID})
	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}
