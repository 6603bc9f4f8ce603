package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"campus-dispatch/internal/audit"
	"campus-dispatch/internal/dispatch"
	identityservice "campus-dispatch/internal/identity/service"
	"campus-dispatch/internal/security"
)

// Pinger reports database liveness for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the policy evaluator is functional.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handlers groups the HTTP handlers and their dependencies.
type Handlers struct {
	facade *dispatch.Facade
	auth   *identityservice.AuthService
	audit  audit.AuditLogger
	db     Pinger
	policy PolicyChecker
}

func NewHandlers(facade *dispatch.Facade, auth *identityservice.AuthService, auditLogger audit.AuditLogger, db Pinger, policy PolicyChecker) *Handlers {
	return &Handlers{
		facade: facade,
		auth:   auth,
		audit:  auditLogger,
		db:     db,
		policy: policy,
	}
}

// NewRouter wires the HTTP surface. Sessions, reports, posts and broadcasts
// all require a bearer token; moderation endpoints additionally require the
// moderator role.
func NewRouter(h *Handlers, tokens *security.TokenProvider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLog())

	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	protected := v1.Group("")
	protected.Use(Auth(tokens))

	sessions := protected.Group("/sessions")
	sessions.POST("", h.activateSession)
	sessions.GET("", h.listSessions)
	sessions.GET("/:id", h.getSession)
	sessions.POST("/:id/acknowledge", h.acknowledgeSession)
	sessions.POST("/:id/position", h.updateSessionPosition)
	sessions.POST("/:id/watch", h.watchSession)
	sessions.POST("/:id/on-the-way", h.responderOnTheWay)
	sessions.POST("/:id/messages", h.postSessionMessage)
	sessions.POST("/:id/escalate", h.escalateSession)
	sessions.POST("/:id/check-in", h.checkInSession)
	sessions.POST("/:id/end", h.endSession)

	reports := protected.Group("/reports")
	reports.POST("", h.submitReport)
	reports.GET("", h.listReports)
	reports.GET("/:id", h.getReport)
	reports.POST("/:id/acknowledge", h.acknowledgeReport)
	reports.POST("/:id/assign", h.assignReport)
	reports.POST("/:id/resolve", h.resolveReport)

	posts := protected.Group("/posts")
	posts.POST("", h.createPost)
	posts.GET("/:id", h.getPost)
	posts.POST("/:id/votes", h.votePost)
	posts.POST("/:id/reject", RequireRole("moderator"), h.rejectPost)
	posts.POST("/:id/retry-escalation", RequireRole("moderator"), h.retryEscalationReport)

	broadcasts := protected.Group("/broadcasts")
	broadcasts.POST("/preview", h.previewAudience)
	broadcasts.POST("", h.issueBroadcast)
	broadcasts.GET("", h.listBroadcasts)
	broadcasts.GET("/:id", h.getBroadcast)

	return r
}
