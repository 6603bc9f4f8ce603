package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-dispatch/internal/geo"
	sessiondomain "campus-dispatch/internal/session/domain"
)

type activateSessionRequest struct {
	Kind        string    `json:"kind" binding:"required"`
	RequesterID string    `json:"requesterId" binding:"required"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	AccuracyM   float64   `json:"accuracyM"`
	RecordedAt  time.Time `json:"recordedAt"`
}

type positionRequest struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracyM"`
	RecordedAt time.Time `json:"recordedAt" binding:"required"`
}

type watchRequest struct {
	WatcherID string `json:"watcherId" binding:"required"`
}

type onTheWayRequest struct {
	ResponderID string `json:"responderId" binding:"required"`
	ETASeconds  int    `json:"etaSeconds" binding:"required"`
}

type messageRequest struct {
	AuthorID string `json:"authorId" binding:"required"`
	Body     string `json:"body" binding:"required"`
}

type endSessionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handlers) activateSession(c *gin.Context) {
	var req activateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos := sessiondomain.Position{
		Point:      geo.Point{Lat: req.Lat, Lng: req.Lng},
		AccuracyM:  req.AccuracyM,
		RecordedAt: req.RecordedAt,
	}
	s, err := h.facade.ActivateSession(c.Request.Context(), sessiondomain.Kind(req.Kind), req.RequesterID, pos)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handlers) acknowledgeSession(c *gin.Context) {
	id := c.Param("id")
	s, err := h.facade.AcknowledgeSession(c.Request.Context(), id, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "session_acknowledge", "session", id, "")
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) updateSessionPosition(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos := sessiondomain.Position{
		Point:      geo.Point{Lat: req.Lat, Lng: req.Lng},
		AccuracyM:  req.AccuracyM,
		RecordedAt: req.RecordedAt,
	}
	s, err := h.facade.UpdateSessionPosition(c.Request.Context(), c.Param("id"), pos)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) watchSession(c *gin.Context) {
	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.facade.WatchSession(c.Request.Context(), c.Param("id"), req.WatcherID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) responderOnTheWay(c *gin.Context) {
	var req onTheWayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.facade.ResponderOnTheWay(c.Request.Context(), c.Param("id"), req.ResponderID,
		time.Duration(req.ETASeconds)*time.Second)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) postSessionMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.facade.PostSessionMessage(c.Request.Context(), c.Param("id"), req.AuthorID, req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) escalateSession(c *gin.Context) {
	id := c.Param("id")
	s, err := h.facade.EscalateSession(c.Request.Context(), id, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "session_escalate", "session", id, "")
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) checkInSession(c *gin.Context) {
	s, err := h.facade.CheckInSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) endSession(c *gin.Context) {
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	s, err := h.facade.EndSession(c.Request.Context(), id, req.Reason, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "session_end", "session", id, req.Reason)
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) getSession(c *gin.Context) {
	s, err := h.facade.GetSession(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handlers) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.facade.ListSessions())
}
