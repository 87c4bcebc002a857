package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/hub"
	"github.com/jocilejr/whatsbot/internal/model"
	"github.com/jocilejr/whatsbot/internal/store"
)

// DeviceHandler serves a user's WhatsApp instances.
type DeviceHandler struct {
	Store *store.Store
	Hub   *hub.Hub
}

type deviceBody struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

func (h *DeviceHandler) Create(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	var body deviceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	device, err := h.Store.AddDevice(c.Request.Context(), ownerID, body.Name, body.Phone)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventInstanceUpdated, device)
	c.JSON(http.StatusOK, device)
}

func (h *DeviceHandler) List(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	devices, err := h.Store.ListDevices(ownerID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (h *DeviceHandler) Update(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	var body deviceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	device, err := h.Store.UpdateDevice(c.Request.Context(), ownerID, c.Param("instanceId"), body.Name, body.Phone)
	if err != nil {
		respondError(c, err, "Instance not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventInstanceUpdated, device)
	c.JSON(http.StatusOK, device)
}

func (h *DeviceHandler) Reconnect(c *gin.Context) {
	h.setStatus(c, model.DeviceActive, true, "Instance reconnected successfully")
}

func (h *DeviceHandler) Disconnect(c *gin.Context) {
	h.setStatus(c, model.DeviceOffline, false, "Instance disconnected successfully")
}

func (h *DeviceHandler) setStatus(c *gin.Context, status model.DeviceStatus, touch bool, message string) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	device, err := h.Store.SetDeviceStatus(c.Request.Context(), ownerID, c.Param("instanceId"), status, touch)
	if err != nil {
		respondError(c, err, "Instance not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventInstanceUpdated, device)
	c.JSON(http.StatusOK, gin.H{"message": message, "instance": device})
}

func (h *DeviceHandler) Delete(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	deviceID := c.Param("instanceId")
	removed, err := h.Store.RemoveDevice(c.Request.Context(), ownerID, deviceID)
	if err != nil {
		respondError(c, err, "Instance not found")
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventInstanceRemoved, gin.H{"id": deviceID})
	c.JSON(http.StatusOK, gin.H{"message": "Instance deleted successfully"})
}
