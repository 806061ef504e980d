package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpulse/surveychat/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService *service.AdminService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/refresh-mapping", h.RefreshMapping)
	r.GET("/cache/:thread_id", h.GetThreadCache)
	r.POST("/cache/purge", h.PurgeCache)
	r.GET("/stats", h.GetStats)
}

// RefreshMapping rereads the canonical topic mapping from disk
func (h *Handler) RefreshMapping(c *gin.Context) {
	result, err := h.adminService.RefreshMapping(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetThreadCache returns the segment cache entry for one thread
func (h *Handler) GetThreadCache(c *gin.Context) {
	threadID := c.Param("thread_id")

	entry, err := h.adminService.ThreadCache(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cache entry for thread"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// PurgeCache removes expired thread cache entries
func (h *Handler) PurgeCache(c *gin.Context) {
	removed, err := h.adminService.PurgeExpiredCache(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// GetStats returns service-level counters
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
