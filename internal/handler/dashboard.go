package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/store"
)

type DashboardHandler struct {
	Store *store.Store
}

func (h *DashboardHandler) Get(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	d, err := h.Store.Dashboard(ownerID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": newOwnerView(d.Owner),
		"metrics": gin.H{
			"total_instances":     d.DeviceCount,
			"active_instances":    d.ActiveDeviceCount,
			"total_conversations": d.ConversationCount,
			"unread_messages":     d.UnreadTotal,
			"active_campaigns":    d.ActiveCampaignCount,
			"messages_today":      d.MessagesToday,
		},
	})
}
