package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identitydomain "campus-dispatch/internal/identity/domain"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, identitydomain.Role(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), op.ID, "operator_register", "operator", op.ID, "")
	c.JSON(http.StatusCreated, gin.H{
		"id":    op.ID,
		"email": op.Email,
		"name":  op.Name,
		"role":  op.Role,
	})
}

func (h *Handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": res.AccessToken,
		"expiresAt":   res.ExpiresAt,
		"operatorId":  res.OperatorID,
		"role":        res.Role,
	})
}
