package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"creperie/api/aggregate"
	"creperie/api/models"
	"creperie/api/store"
	"creperie/api/tracker"
	"creperie/api/utils"
)

const (
	defaultWindowLimit = 500
	maxWindowLimit     = 2000

	queryTimeout = 10 * time.Second
)

// ReportHandlers serves the admin dashboard and log explorer. Unlike
// the capture path, storage read failures here surface to the
// operator — it is their job to see that data is unavailable.
type ReportHandlers struct {
	Store store.EventStore
}

func NewReportHandlers(s store.EventStore) *ReportHandlers {
	return &ReportHandlers{Store: s}
}

// Events returns the filtered record window, most recent first.
func (h *ReportHandlers) Events(c *gin.Context) {
	records, filter, ok := h.window(c)
	if !ok {
		return
	}
	filtered := aggregate.Apply(records, filter)

	pageViews := 0
	for _, r := range filtered {
		if r.Event == tracker.PageViewEvent {
			pageViews++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":    filtered,
		"total":     len(filtered),
		"pageViews": pageViews,
		"others":    len(filtered) - pageViews,
	})
}

// Summary aggregates the filtered window under the requested counting
// mode.
func (h *ReportHandlers) Summary(c *gin.Context) {
	records, filter, ok := h.window(c)
	if !ok {
		return
	}
	filtered := aggregate.Apply(records, filter)
	mode := aggregate.ParseMode(c.Query("mode"))

	c.JSON(http.StatusOK, gin.H{
		"mode":    mode,
		"summary": aggregate.Aggregate(filtered, mode),
	})
}

// TopPages ranks page paths over a start/end range. The hosted store
// ranks server-side; the demo store falls back to in-process
// aggregation over the queried window.
func (h *ReportHandlers) TopPages(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	if ps, ok := h.Store.(store.PageStats); ok {
		results, err := ps.TopPages(ctx, start, end, uint64(limit))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top pages"})
			return
		}
		c.JSON(http.StatusOK, results)
		return
	}

	records, err := h.Store.Query(ctx, store.QueryOptions{Limit: maxWindowLimit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics events"})
		return
	}
	filtered := aggregate.Apply(records, aggregate.Filter{From: start, To: end})
	buckets := aggregate.TopPages(filtered, limit)

	results := make([]models.TopPageResult, 0, len(buckets))
	for _, b := range buckets {
		results = append(results, models.TopPageResult{Page: b.Name, Count: uint64(b.Count)})
	}
	c.JSON(http.StatusOK, results)
}

// ExportCSV streams the filtered window in the legacy export format.
func (h *ReportHandlers) ExportCSV(c *gin.Context) {
	records, filter, ok := h.window(c)
	if !ok {
		return
	}
	filtered := aggregate.Apply(records, filter)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="analytics.csv"`)
	if err := aggregate.WriteCSV(c.Writer, filtered); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export events"})
	}
}

// window queries the record window and parses the shared filter
// parameters. On failure it writes the error response and returns
// ok=false.
func (h *ReportHandlers) window(c *gin.Context) ([]models.EventRecord, aggregate.Filter, bool) {
	limit := defaultWindowLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return nil, aggregate.Filter{}, false
		}
		if n > maxWindowLimit {
			n = maxWindowLimit
		}
		limit = n
	}

	from, to, err := utils.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, aggregate.Filter{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	records, err := h.Store.Query(ctx, store.QueryOptions{Limit: limit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics events"})
		return nil, aggregate.Filter{}, false
	}

	filter := aggregate.Filter{
		Search: c.Query("q"),
		Type:   c.DefaultQuery("type", aggregate.TypeAll),
		From:   from,
		To:     to,
	}
	return records, filter, true
}

func parseRange(c *gin.Context) (start, end time.Time, err error) {
	start, end, err = utils.ParseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return
	}
	if start.IsZero() {
		start = time.Now().UTC().Add(-7 * 24 * time.Hour)
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return
}
