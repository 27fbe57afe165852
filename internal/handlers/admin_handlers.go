package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginInput struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles POST /v1/admin/login
func (h *Handlers) AdminLogin(c *gin.Context) {
	// 1. --- Bind ---
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Check password ---
	match, err := h.AdminPassword.Matches(input.Password)
	if err != nil {
		serverError(c, "Failed to verify password", err)
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	// 3. --- Issue token ---
	token, expiresAt, err := h.Issuer.GenerateToken()
	if err != nil {
		serverError(c, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt})
}
