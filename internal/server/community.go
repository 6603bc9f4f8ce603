package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	communitydomain "campus-dispatch/internal/community/domain"
	communityengine "campus-dispatch/internal/community/engine"
	"campus-dispatch/internal/geo"
	reportdomain "campus-dispatch/internal/report/domain"
)

type createPostRequest struct {
	AuthorID  string   `json:"authorId" binding:"required"`
	Category  string   `json:"category" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Threshold int      `json:"threshold"`
}

type voteRequest struct {
	VoterID   string `json:"voterId" binding:"required"`
	Direction string `json:"direction" binding:"required"`
}

func (h *Handlers) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub := communityengine.Submission{
		AuthorID:  req.AuthorID,
		Category:  reportdomain.Category(req.Category),
		Content:   req.Content,
		Threshold: req.Threshold,
	}
	if req.Lat != nil && req.Lng != nil {
		sub.Location = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	p, err := h.facade.CreatePost(c.Request.Context(), sub)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handlers) votePost(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.facade.VotePost(c.Request.Context(), c.Param("id"), req.VoterID,
		communitydomain.Direction(req.Direction))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) rejectPost(c *gin.Context) {
	id := c.Param("id")
	p, err := h.facade.RejectPost(c.Request.Context(), id, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "post_reject", "post", id, "")
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) retryEscalationReport(c *gin.Context) {
	id := c.Param("id")
	p, err := h.facade.RetryEscalationReport(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "post_retry_report", "post", id, "")
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) getPost(c *gin.Context) {
	p, err := h.facade.GetPost(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
