package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rfid-access-backend/config"
	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/model"
	"rfid-access-backend/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Gate{}, &model.Booth{}, &model.Device{}, &model.Node{},
		&model.User{}, &model.AccessLog{}, &model.Admin{},
		&model.SyncStatus{}, &model.PushSubscription{},
	))

	cfg := &config.Config{
		Server: config.ServerConfig{
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
			CacheTTLSeconds: 1,
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 60},
	}

	s := store.NewGormStore(db)
	router := NewRouter(s, access.NewEngine(db), cfg, nil)
	return router, db
}

func seedGateway(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&model.Gate{ID: 1, Name: "Main Entrance", Type: model.GateCommonIn}).Error)
	require.NoError(t, db.Create(&model.Device{ID: 10, DeviceCode: "DEV-IN", GateID: 1}).Error)
	require.NoError(t, db.Create(&model.Booth{ID: 100, Name: "Lane A", GateID: 1, DeviceID: 10, IsActive: true}).Error)
	require.NoError(t, db.Create(&model.Node{ID: 1000, Name: "node-in", GateID: 1}).Error)
}

func timeAgo(minutes int) time.Time {
	return time.Now().Add(-time.Duration(minutes) * time.Minute)
}

func doJSON(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAdmin(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/auth/register",
		`{"username":"operator","password":"long-enough-pw"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	token := registerAdmin(t, router)
	assert.NotEmpty(t, token)

	// Same username again is refused.
	w := doJSON(router, http.MethodPost, "/api/auth/register",
		`{"username":"operator","password":"long-enough-pw"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login",
		`{"username":"operator","password":"long-enough-pw"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login",
		`{"username":"operator","password":"wrong-password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login",
		`{"username":"ghost","password":"long-enough-pw"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := registerAdmin(t, router)
	w = doJSON(router, http.MethodGet, "/api/users", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostScan(t *testing.T) {
	router, db := newTestRouter(t)
	seedGateway(t, db)
	require.NoError(t, db.Create(&model.User{
		RFIDTag: "TAG-1", Name: "Alex", UserType: model.UserCommon, Status: model.StatusIdle,
	}).Error)

	scan := `{"rfid_tag":"TAG-1","gate_id":1,"booth_id":100,"device_id":10,"node_id":1000}`

	w := doJSON(router, http.MethodPost, "/api/scan", scan, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dec access.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dec))
	assert.Equal(t, model.ResultPass, dec.Result)
	assert.Equal(t, model.EventEntry, dec.EventType)

	// The user is now In; the entry gate refuses the resulting EXIT.
	w = doJSON(router, http.MethodPost, "/api/scan", scan, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dec))
	assert.Equal(t, model.ResultFail, dec.Result)
	assert.Equal(t, "Wrong direction for this gate", dec.Message)

	w = doJSON(router, http.MethodPost, "/api/scan", `{"rfid_tag":""}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAdmin(t, router)

	w := doJSON(router, http.MethodPost, "/api/users",
		`{"rfid_tag":"TAG-1","name":"Alex","nic":"991234567V","user_type":"VIP"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	var created createUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	require.NotNil(t, created.ID)

	// Duplicate tag reports failure in the body, not the status code.
	w = doJSON(router, http.MethodPost, "/api/users",
		`{"rfid_tag":"TAG-1","name":"Copy"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.False(t, created.Success)

	w = doJSON(router, http.MethodPost, "/api/users",
		`{"rfid_tag":"TAG-2","user_type":"Royalty"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown user_type is rejected")

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/users/%d", *created.ID), "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "TAG-1", fetched.RFIDTag)
	assert.Equal(t, model.UserVIP, fetched.UserType)
	assert.Equal(t, model.StatusIdle, fetched.Status)

	w = doJSON(router, http.MethodGet, "/api/users/424242", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users/not-a-number", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users?skip=0&limit=10", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 1)
}

func TestImportUsersEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	token := registerAdmin(t, router)

	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	part, err := mp.CreateFormFile("file", "users.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("rfid_tag,name,nic,user_type\nTAG-1,Alex,,Common\nTAG-1,Dup,,Common\n"))
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/import", &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"inserted":1,"duplicates":1}`, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDashboardEndpoints(t *testing.T) {
	router, db := newTestRouter(t)
	token := registerAdmin(t, router)
	seedGateway(t, db)

	user := model.User{RFIDTag: "TAG-1", Name: "Alex", UserType: model.UserCommon, Status: model.StatusIn}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&model.AccessLog{
		UserID: &user.ID, UserType: model.UserCommon, EventType: model.EventEntry,
		GateID: 1, BoothID: 100, Result: model.ResultPass,
		Message: "Access granted - ENTRY", NodeID: 1000,
	}).Error)

	w := doJSON(router, http.MethodGet, "/api/dashboard/summary", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var sum store.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, int64(1), sum.TotalUsers)
	assert.Equal(t, int64(1), sum.InUsers)

	w = doJSON(router, http.MethodGet, "/api/dashboard/logs?limit=10", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []logEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "IN", logs[0].EventType)
	assert.Equal(t, "GRANTED", logs[0].Result)
	assert.Equal(t, "Main Entrance / Lane A", logs[0].GateLocation)
	assert.Equal(t, "DEV-IN", logs[0].DeviceID)
	require.NotNil(t, logs[0].User)
	assert.Equal(t, "IN", logs[0].User.Status)
	assert.True(t, logs[0].User.IsActive)
}

func TestSyncEndpoints(t *testing.T) {
	router, db := newTestRouter(t)
	token := registerAdmin(t, router)

	require.NoError(t, db.Create(&model.SyncStatus{
		NodeID: 1000, Table: "users",
		LastSyncTimestamp: timeAgo(10), SyncStatus: model.SyncSuccess,
	}).Error)

	w := doJSON(router, http.MethodGet, "/api/sync/status", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []store.SyncRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].MinutesSinceSync)

	w = doJSON(router, http.MethodPost, "/api/sync/trigger?node_id=1000", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sync triggered for node 1000")

	w = doJSON(router, http.MethodPost, "/api/sync/trigger?node_id=abc", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAdmin(t, router)

	body := `{"endpoint":"https://push.example/abc","p256dh":"key","auth":"secret"}`
	w := doJSON(router, http.MethodPut, "/api/subscriptions", body, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Refreshing the same endpoint is an upsert, not a conflict.
	w = doJSON(router, http.MethodPut, "/api/subscriptions", body, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/abc", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/gone", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/subscriptions",
		`{"endpoint":"https://push.example/abc"}`, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/abc", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(router, http.MethodGet, "/api/vapid_public_key", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
