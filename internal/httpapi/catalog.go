package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/admibot/admibot-go/internal/academic"
	"github.com/admibot/admibot-go/internal/sentry"
)

// handleFaculties lists faculties, optionally filtered by ?name=.
func (h *Handler) handleFaculties(c *gin.Context) {
	filter, ok := h.catalogFilter(c)
	if !ok {
		return
	}

	faculties, err := h.catalog.ListFaculties(c.Request.Context(), filter)
	if err != nil {
		h.catalogError(c, "faculties", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(faculties), "faculties": faculties})
}

// handlePrograms lists programs, filtered by ?name= and ?faculty=.
func (h *Handler) handlePrograms(c *gin.Context) {
	filter, ok := h.catalogFilter(c)
	if !ok {
		return
	}

	programs, err := h.catalog.ListPrograms(c.Request.Context(), filter)
	if err != nil {
		h.catalogError(c, "programs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(programs), "programs": programs})
}

// handleCurriculum lists curriculum rows. ?program= is required since an
// unscoped dump of every program's study plan helps nobody.
func (h *Handler) handleCurriculum(c *gin.Context) {
	filter, ok := h.catalogFilter(c)
	if !ok {
		return
	}
	if filter.Program == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "program parameter is required"})
		return
	}

	entries, err := h.catalog.ListCurriculum(c.Request.Context(), filter)
	if err != nil {
		h.catalogError(c, "curriculum", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "curriculum": entries})
}

// catalogFilter builds an academic filter from query parameters. On a
// malformed numeric parameter it writes the 400 itself and returns false.
func (h *Handler) catalogFilter(c *gin.Context) (academic.Filter, bool) {
	filter := academic.Filter{
		Name:    c.Query("name"),
		Faculty: c.Query("faculty"),
		Program: c.Query("program"),
		Course:  c.Query("course"),
		Track:   c.Query("track"),
	}

	if raw := c.Query("semester"); raw != "" {
		semester, err := strconv.Atoi(raw)
		if err != nil || semester < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "semester must be a positive integer"})
			return academic.Filter{}, false
		}
		filter.Semester = semester
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return academic.Filter{}, false
		}
		filter.Limit = limit
	}

	return filter, true
}

func (h *Handler) catalogError(c *gin.Context, endpoint string, err error) {
	h.metrics.RecordHTTPError("provider_down", endpoint)
	h.logger.WithError(err).WithField("endpoint", endpoint).Error("Catalog listing failed")
	sentry.CaptureExceptionWithContext(c.Request.Context(), err)
	c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "academic data provider unavailable"})
}
