package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-dispatch/internal/geo"
	reportdomain "campus-dispatch/internal/report/domain"
	reportengine "campus-dispatch/internal/report/engine"
)

type submitReportRequest struct {
	Category   string   `json:"category" binding:"required"`
	Summary    string   `json:"summary" binding:"required"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	ReporterID string   `json:"reporterId"`
	Anonymous  bool     `json:"anonymous"`
	MediaCount int      `json:"mediaCount"`
}

type assignReportRequest struct {
	Assignee string `json:"assignee" binding:"required"`
}

func (h *Handlers) submitReport(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub := reportengine.Submission{
		Category:   reportdomain.Category(req.Category),
		Summary:    req.Summary,
		ReporterID: req.ReporterID,
		Anonymous:  req.Anonymous,
		MediaCount: req.MediaCount,
	}
	if req.Lat != nil && req.Lng != nil {
		sub.Location = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	r, err := h.facade.SubmitReport(c.Request.Context(), sub)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handlers) acknowledgeReport(c *gin.Context) {
	id := c.Param("id")
	r, err := h.facade.AcknowledgeReport(c.Request.Context(), id, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "report_acknowledge", "report", id, "")
	c.JSON(http.StatusOK, r)
}

func (h *Handlers) assignReport(c *gin.Context) {
	var req assignReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	r, err := h.facade.AssignReport(c.Request.Context(), id, req.Assignee, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "report_assign", "report", id, req.Assignee)
	c.JSON(http.StatusOK, r)
}

func (h *Handlers) resolveReport(c *gin.Context) {
	id := c.Param("id")
	r, err := h.facade.ResolveReport(c.Request.Context(), id, operatorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit.LogEvent(c.Request.Context(), operatorID(c), "report_resolve", "report", id, "")
	c.JSON(http.StatusOK, r)
}

func (h *Handlers) getReport(c *gin.Context) {
	r, err := h.facade.GetReport(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// listReports filters by optional status, team and priority query params.
func (h *Handlers) listReports(c *gin.Context) {
	var filter reportengine.Filter
	if v := c.Query("status"); v != "" {
		s := reportdomain.Status(v)
		filter.Status = &s
	}
	if v := c.Query("team"); v != "" {
		t := reportdomain.Team(v)
		filter.Team = &t
	}
	if v := c.Query("priority"); v != "" {
		p := reportdomain.Priority(v)
		filter.Priority = &p
	}
	c.JSON(http.StatusOK, h.facade.ListReports(filter))
}
