package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	broadcastengine "campus-dispatch/internal/broadcast/engine"
	"campus-dispatch/internal/geo"
)

type broadcastRequest struct {
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM float64 `json:"radiusM" binding:"required"`
}

// previewAudience resolves recipients without issuing anything; the issue
// call is the separate commit step.
func (h *Handlers) previewAudience(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	audience, err := h.facade.PreviewAudience(c.Request.Context(), geo.Point{Lat: req.Lat, Lng: req.Lng}, req.RadiusM)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipients": audience, "count": len(audience)})
}

func (h *Handlers) issueBroadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.facade.IssueBroadcast(c.Request.Context(), broadcastengine.Request{
		Message:  req.Message,
		Center:   geo.Point{Lat: req.Lat, Lng: req.Lng},
		RadiusM:  req.RadiusM,
		IssuedBy: operatorID(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "broadcast_issue", "broadcast", b.ID, req.Message)
	c.JSON(http.StatusCreated, b)
}

func (h *Handlers) getBroadcast(c *gin.Context) {
	b, err := h.facade.GetBroadcast(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) listBroadcasts(c *gin.Context) {
	c.JSON(http.StatusOK, h.facade.ListBroadcasts())
}
