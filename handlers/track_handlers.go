package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"creperie/api/consent"
	"creperie/api/identity"
	"creperie/api/models"
	"creperie/api/tracker"
)

// captureTimeout bounds one whole capture call: up to three enrichment
// lookups plus the store append.
const captureTimeout = 10 * time.Second

type TrackHandlers struct {
	Tracker *tracker.Tracker
	IDs     *identity.Resolver
}

func NewTrackHandlers(t *tracker.Tracker, ids *identity.Resolver) *TrackHandlers {
	return &TrackHandlers{Tracker: t, IDs: ids}
}

// Track is the public capture endpoint. It is fire-and-forget from the
// site's perspective: best-effort telemetry must never break the host
// page, so everything past request validation answers 202 regardless
// of downstream failures.
func (h *TrackHandlers) Track(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event name is required"})
		return
	}
	h.record(c, req, false)
}

// TrackPageView captures a page navigation without requiring an event
// name in the body.
func (h *TrackHandlers) TrackPageView(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.record(c, req, true)
}

func (h *TrackHandlers) record(c *gin.Context, req models.TrackRequest, pageView bool) {
	state := consent.FromRequest(c.Request)

	capture := tracker.Capture{
		Event:     req.Event,
		Page:      req.Page,
		Metadata:  req.Metadata,
		Device:    req.Device,
		Consent:   state,
		UserAgent: c.Request.UserAgent(),
		ClientIP:  c.ClientIP(),
	}
	// Resolving the anon id sets a cookie on first sight, so it only
	// happens once the gate is open.
	if state.Given() {
		capture.AnonID = h.IDs.AnonID(c.Request, c.Writer)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), captureTimeout)
	defer cancel()

	var err error
	if pageView {
		_, err = h.Tracker.TrackPageView(ctx, capture)
	} else {
		_, err = h.Tracker.Track(ctx, capture)
	}
	if err != nil {
		// Deliberately discarded: the capture path never surfaces
		// errors to the visitor.
		slog.Warn("failed to record analytics event", "event", capture.Event, "error", err)
	}

	c.Status(http.StatusAccepted)
}
