package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetSyncStatus handles the GET /api/sync/status request: per (node, table)
// replication state for operator observability.
func (h *Handler) GetSyncStatus(c *gin.Context) {
	rows, err := h.store.SyncStatuses(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sync status"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// TriggerSync handles the POST /api/sync/trigger request for one node or all.
func (h *Handler) TriggerSync(c *gin.Context) {
	var nodeID *int64
	if raw := c.Query("node_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid node ID"})
			return
		}
		nodeID = &id
	}

	affected, err := h.store.TriggerSync(c.Request.Context(), nodeID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger sync"})
		return
	}

	message := "Sync triggered for all nodes"
	if nodeID != nil {
		message = fmt.Sprintf("Sync triggered for node %d", *nodeID)
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "rows": affected})
}
