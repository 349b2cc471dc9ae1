package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

func (h HandlerSet) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, _, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	// Browsers get the same credential as a cookie; API clients use the body.
	c.SetCookie("Authorization", "Bearer "+token, h.cfg.Session.Expiration, "/", "", false, true)

	c.JSON(http.StatusCreated, sessionResponse{Token: token})
}
