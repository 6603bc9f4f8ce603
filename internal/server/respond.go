package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	broadcastengine "campus-dispatch/internal/broadcast/engine"
	communityengine "campus-dispatch/internal/community/engine"
	"campus-dispatch/internal/dispatch"
	identityservice "campus-dispatch/internal/identity/service"
	reportengine "campus-dispatch/internal/report/engine"
	sessionengine "campus-dispatch/internal/session/engine"
)

// statusFor maps engine sentinels onto HTTP codes: validation failures map to
// 400, state conflicts to 409, unknown identifiers to 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sessionengine.ErrNotFound),
		errors.Is(err, reportengine.ErrNotFound),
		errors.Is(err, communityengine.ErrNotFound),
		errors.Is(err, broadcastengine.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, sessionengine.ErrDuplicateActiveSession),
		errors.Is(err, sessionengine.ErrStaleUpdate),
		errors.Is(err, sessionengine.ErrAlreadyResolved),
		errors.Is(err, sessionengine.ErrTerminalState),
		errors.Is(err, reportengine.ErrTerminalState),
		errors.Is(err, communityengine.ErrAlreadySettled),
		errors.Is(err, communityengine.ErrReportAttached),
		errors.Is(err, communityengine.ErrNotEscalated):
		return http.StatusConflict

	case errors.Is(err, sessionengine.ErrInvalidKind),
		errors.Is(err, sessionengine.ErrInvalidPosition),
		errors.Is(err, sessionengine.ErrWrongSessionKind),
		errors.Is(err, sessionengine.ErrWatcherIsOwner),
		errors.Is(err, reportengine.ErrUnknownCategory),
		errors.Is(err, reportengine.ErrEmptySummary),
		errors.Is(err, reportengine.ErrInvalidLocation),
		errors.Is(err, reportengine.ErrMissingAssignee),
		errors.Is(err, communityengine.ErrUnknownCategory),
		errors.Is(err, communityengine.ErrEmptyContent),
		errors.Is(err, communityengine.ErrInvalidLocation),
		errors.Is(err, communityengine.ErrInvalidDirection),
		errors.Is(err, broadcastengine.ErrRadiusOutOfRange),
		errors.Is(err, broadcastengine.ErrInvalidCenter),
		errors.Is(err, broadcastengine.ErrEmptyMessage):
		return http.StatusBadRequest

	case errors.Is(err, identityservice.ErrInvalidCredentials),
		errors.Is(err, identityservice.ErrAccountDisabled):
		return http.StatusUnauthorized
	case errors.Is(err, identityservice.ErrEmailAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, identityservice.ErrInvalidEmail),
		errors.Is(err, identityservice.ErrWeakPassword),
		errors.Is(err, identityservice.ErrInvalidRole):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes an error response. Escalation partial failures carry a distinct
// code so callers know to retry report creation, not the vote.
func fail(c *gin.Context, err error) {
	var partial *dispatch.EscalationPartialFailure
	if errors.As(err, &partial) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  partial.Error(),
			"code":   "escalation_partial_failure",
			"postId": partial.PostID,
		})
		return
	}
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
