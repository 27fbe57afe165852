package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rjpc/storefront/internal/analytics"
)

// GetDashboardStats handles GET /v1/admin/dashboard-stats. Figures are
// computed from the same order snapshot the list shows.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	summary := analytics.Summarize(h.Feed.Snapshot(), h.now())
	c.JSON(http.StatusOK, summary)
}
