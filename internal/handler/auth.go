package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/auth"
	"github.com/jocilejr/whatsbot/internal/store"
)

type AuthHandler struct {
	Store       *store.Store
	TokenConfig auth.TokenConfig
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	owner, err := h.Store.GetOwnerByLogin(body.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(c, err, "")
		return
	}
	// owner.Secret is empty for an unknown login, which CheckSecret rejects
	// after a dummy comparison.
	if err := auth.CheckSecret(owner.Secret, body.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(owner.ID, h.TokenConfig)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newOwnerView(owner), "token": token})
}
