package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-adverse/db"
	"go-adverse/logging"
	"go-adverse/newsfeed"
	"go-adverse/processor"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Screen runs a screening for the posted query.
func (h *Handler) Screen(c *gin.Context) {
	if h.Screener == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "screening is not configured"})
		return
	}

	var request processor.Request
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	screening, err := h.Screener.Screen(c.Request.Context(), request)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, screening)
	case errors.Is(err, processor.ErrNotPersisted) && screening != nil:
		c.JSON(http.StatusOK, gin.H{"screening": screening, "warning": err.Error()})
	case errors.Is(err, processor.ErrEmptyQuery), errors.Is(err, newsfeed.ErrUnknownTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.Error("Screening failed", "query", request.Query, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListScreenings returns the most recent screenings, newest first.
func (h *Handler) ListScreenings(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage is not configured"})
		return
	}

	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	screenings, err := h.Store.ListScreenings(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"screenings": screenings})
}

// GetScreening returns one screening with its ranked articles.
func (h *Handler) GetScreening(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage is not configured"})
		return
	}

	screening, err := h.Store.GetScreening(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, screening)
}

// GetInsights returns only the aggregated insights of a screening.
func (h *Handler) GetInsights(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage is not configured"})
		return
	}

	screening, err := h.Store.GetScreening(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       screening.ID,
		"query":    screening.Query,
		"summary":  screening.Summary,
		"insights": screening.Insights,
	})
}

// TimeRanges lists the accepted timeRange values.
func TimeRanges(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timeRanges": newsfeed.TimeRanges()})
}

func storeError(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
