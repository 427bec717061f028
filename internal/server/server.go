// Package server exposes the replay-viewer HTTP API.
//
// The API is read only. Every event, moment, and commentary read goes
// through a view.Session so the playhead gate and the redaction gate
// cannot be bypassed by a route.
package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/kibitz/internal/config"
	"github.com/roach88/kibitz/internal/redact"
	"github.com/roach88/kibitz/internal/store"
	"github.com/roach88/kibitz/internal/view"
)

// Handler handles HTTP requests.
type Handler struct {
	store   *store.Store
	cfg     *config.Config
	metrics *Metrics
}

// NewHandler creates a new handler.
func NewHandler(st *store.Store, cfg *config.Config) *Handler {
	return &Handler{
		store:   st,
		cfg:     cfg,
		metrics: NewMetrics(),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Use(h.countRequests)

	e.GET("/v1/matches", h.ListMatches)
	e.GET("/v1/matches/:match_id/events", h.GetEvents)
	e.GET("/v1/matches/:match_id/moments", h.GetMoments)
	e.GET("/v1/matches/:match_id/moments/:moment_id/commentary", h.GetMomentCommentary)
	e.GET("/v1/matches/:match_id/commentary", h.GetCommentary)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{})))
}

// countRequests records every request by route pattern and status.
func (h *Handler) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		h.metrics.requestsTotal.WithLabelValues(
			c.Path(), strconv.Itoa(status)).Inc()
		return err
	}
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// ListMatches lists all stored match ids.
// GET /v1/matches
func (h *Handler) ListMatches(c echo.Context) error {
	ids, err := h.store.ListMatches(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list matches"})
	}
	return c.JSON(http.StatusOK, map[string]any{"matches": ids})
}

// GetEvents returns the event log up to the playhead, redacted per the
// viewer's mode.
// GET /v1/matches/:match_id/events?playhead=&reveal=&mode=
func (h *Handler) GetEvents(c echo.Context) error {
	sess, ok := h.loadSession(c)
	if !ok {
		return nil
	}
	playhead, reveal, ok := h.viewParams(c, sess)
	if !ok {
		return nil
	}
	pol, ok := h.policy(c, reveal)
	if !ok {
		return nil
	}

	events := sess.EventsAt(playhead, pol)
	h.metrics.eventsServed.Add(float64(len(events)))
	for _, ev := range events {
		if ev.IsRedacted {
			h.metrics.redactionsTotal.Inc()
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"match_id": c.Param("match_id"),
		"playhead": playhead,
		"mode":     pol.Mode,
		"events":   events,
	})
}

// GetMoments returns the moments visible at the playhead.
// GET /v1/matches/:match_id/moments?playhead=&reveal=
func (h *Handler) GetMoments(c echo.Context) error {
	sess, ok := h.loadSession(c)
	if !ok {
		return nil
	}
	playhead, reveal, ok := h.viewParams(c, sess)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, map[string]any{
		"match_id": c.Param("match_id"),
		"playhead": playhead,
		"moments":  sess.MomentsAt(playhead, reveal),
	})
}

// GetCommentary returns all commentary visible at the playhead.
// GET /v1/matches/:match_id/commentary?playhead=&reveal=
func (h *Handler) GetCommentary(c echo.Context) error {
	sess, ok := h.loadSession(c)
	if !ok {
		return nil
	}
	playhead, reveal, ok := h.viewParams(c, sess)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, map[string]any{
		"match_id":   c.Param("match_id"),
		"playhead":   playhead,
		"commentary": sess.CommentaryAt(playhead, reveal),
	})
}

// GetMomentCommentary returns the commentary bound to one moment, by
// id or by range overlap, still gated by the playhead.
// GET /v1/matches/:match_id/moments/:moment_id/commentary?playhead=&reveal=
func (h *Handler) GetMomentCommentary(c echo.Context) error {
	sess, ok := h.loadSession(c)
	if !ok {
		return nil
	}
	playhead, reveal, ok := h.viewParams(c, sess)
	if !ok {
		return nil
	}

	return c.JSON(http.StatusOK, map[string]any{
		"match_id":   c.Param("match_id"),
		"moment_id":  c.Param("moment_id"),
		"playhead":   playhead,
		"commentary": sess.MomentCommentary(c.Param("moment_id"), playhead, reveal),
	})
}

// loadSession loads the match session, writing the error response
// itself when the load fails. An id with no events is unknown.
func (h *Handler) loadSession(c echo.Context) (*view.Session, bool) {
	matchID := c.Param("match_id")
	sess, err := h.store.Session(c.Request().Context(), matchID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load match"})
		return nil, false
	}
	if sess.EventCount() == 0 {
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": "match not found"})
		return nil, false
	}
	return sess, true
}

// viewParams parses playhead and reveal. A missing playhead means the
// end of the log, the fully played-out view.
func (h *Handler) viewParams(c echo.Context, sess *view.Session) (int64, bool, bool) {
	playhead := int64(sess.EventCount() - 1)
	if raw := c.QueryParam("playhead"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "playhead must be an integer"})
			return 0, false, false
		}
		playhead = v
	}

	reveal := false
	if raw := c.QueryParam("reveal"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "reveal must be a boolean"})
			return 0, false, false
		}
		reveal = v
	}

	return playhead, reveal, true
}

// policy builds the redaction policy for one request from the mode
// query parameter, falling back to the configured default.
func (h *Handler) policy(c echo.Context, reveal bool) (redact.Policy, bool) {
	mode := redact.Mode(h.cfg.DefaultMode)
	if raw := c.QueryParam("mode"); raw != "" {
		mode = redact.Mode(raw)
	}

	switch mode {
	case redact.ModeSpectator, redact.ModePostMatch, redact.ModeDirector:
	default:
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown mode %q", mode)})
		return redact.Policy{}, false
	}

	return redact.Policy{
		Mode:           mode,
		RevealSpoilers: reveal,
		Prefix:         h.cfg.PrivatePrefix,
	}, true
}
