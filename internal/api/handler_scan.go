package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/model"
)

// PostScan handles the POST /api/scan request. Each HTTP request carries one
// logical scan, so this path calls the decision engine directly with no
// debounce.
func (h *Handler) PostScan(c *gin.Context) {
	var req access.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dec, err := h.engine.Decide(c.Request.Context(), req)
	if err != nil {
		// Store fault: attempt the denial log, then report the fault.
		if logErr := h.engine.LogFault(c.Request.Context(), req, err); logErr != nil {
			log.Printf("[scan] fault log failed: %v", logErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "access decision failed"})
		return
	}

	if dec.Result == model.ResultFail {
		c.JSON(http.StatusBadRequest, dec)
		return
	}
	c.JSON(http.StatusOK, dec)
}
