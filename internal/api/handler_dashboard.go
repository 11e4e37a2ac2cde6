package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rfid-access-backend/internal/model"
	"rfid-access-backend/internal/store"
)

// GetDashboardSummary handles the GET /api/dashboard/summary request.
func (h *Handler) GetDashboardSummary(c *gin.Context) {
	sum, err := h.store.DashboardSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate users"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// logEntryResponse is the UI-facing shape for one decision log.
type logEntryResponse struct {
	ID           int64            `json:"id"`
	UserID       *int64           `json:"userId"`
	EventType    string           `json:"eventType"`
	GateLocation string           `json:"gateLocation"`
	DeviceID     string           `json:"deviceId"`
	Timestamp    time.Time        `json:"timestamp"`
	Result       string           `json:"result"`
	Message      string           `json:"message"`
	User         *logUserResponse `json:"user"`
}

type logUserResponse struct {
	Name     *string `json:"name"`
	NIC      *string `json:"nic"`
	RFIDTag  *string `json:"rfidTag"`
	Status   string  `json:"status"`
	IsActive bool    `json:"isActive"`
}

// GetDashboardLogs handles the GET /api/dashboard/logs request.
func (h *Handler) GetDashboardLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	if limit <= 0 || limit > 5000 {
		limit = 1000
	}

	rows, err := h.store.DashboardLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}

	logs := make([]logEntryResponse, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, mapLogRow(row))
	}
	c.JSON(http.StatusOK, logs)
}

func mapLogRow(row store.LogRow) logEntryResponse {
	location := "Unknown gate"
	if row.GateName != nil {
		location = *row.GateName
		if row.BoothName != nil {
			location = *row.GateName + " / " + *row.BoothName
		}
	}

	deviceID := "N/A"
	if row.DeviceCode != nil {
		deviceID = *row.DeviceCode
	}

	var user *logUserResponse
	if row.UserID != nil {
		var status model.UserStatus
		if row.UStatus != nil {
			status = *row.UStatus
		}
		user = &logUserResponse{
			Name:     row.UName,
			NIC:      row.UNIC,
			RFIDTag:  row.URFID,
			Status:   strings.ToUpper(strings.TrimSpace(string(status))),
			IsActive: status != model.StatusBanned,
		}
	}

	return logEntryResponse{
		ID:           row.LogID,
		UserID:       row.UserID,
		EventType:    mapEventType(row.EventType),
		GateLocation: location,
		DeviceID:     deviceID,
		Timestamp:    row.Timestamp,
		Result:       mapResult(row.Result),
		Message:      row.Message,
		User:         user,
	}
}

func mapEventType(event model.EventType) string {
	switch event {
	case model.EventEntry:
		return "IN"
	case model.EventExit:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

func mapResult(result model.ResultType) string {
	switch result {
	case model.ResultPass:
		return "GRANTED"
	case model.ResultFail:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}
