package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/hub"
	"github.com/jocilejr/whatsbot/internal/store"
)

type ConversationHandler struct {
	Store *store.Store
	Hub   *hub.Hub
}

type conversationBody struct {
	InstanceID string `json:"instance_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
}

type messageBody struct {
	Text string `json:"text" binding:"required"`
}

func (h *ConversationHandler) List(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Store.ListConversations(ownerID))
}

func (h *ConversationHandler) Get(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	conv, err := h.Store.GetConversation(ownerID, c.Param("conversationId"))
	if err != nil {
		respondError(c, err, "Conversation not found")
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) Create(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	var body conversationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	conv, err := h.Store.CreateConversation(c.Request.Context(), ownerID, body.InstanceID, body.Name, body.Phone)
	if err != nil {
		respondError(c, err, "Instance not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventConversationCreated, conv)
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	var body messageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	conversationID := c.Param("conversationId")
	msg, err := h.Store.AppendMessage(c.Request.Context(), ownerID, conversationID, body.Text)
	if err != nil {
		respondError(c, err, "Conversation not found")
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventNewMessage, newMessageEvent(conversationID, msg))
	c.JSON(http.StatusOK, gin.H{"message": "Message sent successfully", "data": msg})
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	ownerID, ok := authOwner(c)
	if !ok {
		return
	}
	conversationID := c.Param("conversationId")
	deleted, err := h.Store.DeleteConversation(c.Request.Context(), ownerID, conversationID)
	if err != nil {
		respondError(c, err, "Conversation not found")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	_ = h.Hub.Publish(ownerID, hub.EventConversationDeleted, gin.H{"id": conversationID})
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}
