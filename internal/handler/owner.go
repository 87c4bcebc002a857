package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/auth"
	"github.com/jocilejr/whatsbot/internal/store"
)

type OwnerHandler struct {
	Store *store.Store
}

type ownerBody struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *OwnerHandler) Create(c *gin.Context) {
	var body ownerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	hash, err := auth.HashSecret(body.Password)
	if err != nil {
		respondError(c, err, "")
		return
	}
	owner, err := h.Store.CreateOwner(c.Request.Context(), body.Name, body.Username, hash)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newOwnerView(owner))
}

func (h *OwnerHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, newOwnerViews(h.Store.ListOwners()))
}

func (h *OwnerHandler) Get(c *gin.Context) {
	owner, err := h.Store.GetOwner(c.Param("userId"))
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newOwnerView(owner))
}

func (h *OwnerHandler) Update(c *gin.Context) {
	var body ownerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	hash, err := auth.HashSecret(body.Password)
	if err != nil {
		respondError(c, err, "")
		return
	}
	owner, err := h.Store.UpdateOwner(c.Request.Context(), c.Param("userId"), body.Name, body.Username, hash)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newOwnerView(owner))
}

func (h *OwnerHandler) Delete(c *gin.Context) {
	ok, err := h.Store.DeleteOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
