package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/store"
)

type HealthHandler struct {
	Store *store.Store
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": h.Store.Backend().Name()})
}
