package access

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rfid-access-backend/internal/model"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and serializes
	// writers the way a shared sqlite file would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Gate{},
		&model.Booth{},
		&model.Device{},
		&model.Node{},
		&model.User{},
		&model.AccessLog{},
	))
	return db
}

// seedTopology installs one gate of each type with a wired device, booth and
// node, plus an inactive booth and an orphan device for the failure cases.
//
//	gate 1 Common_IN:  device 10 "DEV-IN"   booth 100  node 1000
//	gate 2 Common_Out: device 20 "DEV-OUT"  booth 200  node 2000
//	gate 3 VIP:        device 30 "DEV-VIP"  booth 300  node 3000
//	gate 4 Backstage:  device 40 "DEV-BACK" booth 400  node 4000
//	gate 1 also has device 15 "DEV-IDLE" with inactive booth 150,
//	and device 50 "DEV-LONE" with no booth at all.
func seedTopology(t *testing.T, db *gorm.DB) {
	t.Helper()

	gates := []model.Gate{
		{ID: 1, Name: "Main Entrance", Type: model.GateCommonIn},
		{ID: 2, Name: "Main Exit", Type: model.GateCommonOut},
		{ID: 3, Name: "VIP Lounge", Type: model.GateVIP},
		{ID: 4, Name: "Backstage Door", Type: model.GateBackstage},
	}
	require.NoError(t, db.Create(&gates).Error)

	devices := []model.Device{
		{ID: 10, DeviceCode: "DEV-IN", GateID: 1},
		{ID: 15, DeviceCode: "DEV-IDLE", GateID: 1},
		{ID: 20, DeviceCode: "DEV-OUT", GateID: 2},
		{ID: 30, DeviceCode: "DEV-VIP", GateID: 3},
		{ID: 40, DeviceCode: "DEV-BACK", GateID: 4},
		{ID: 50, DeviceCode: "DEV-LONE", GateID: 1},
	}
	require.NoError(t, db.Create(&devices).Error)

	booths := []model.Booth{
		{ID: 100, Name: "Lane A", GateID: 1, DeviceID: 10, IsActive: true},
		{ID: 150, Name: "Lane B", GateID: 1, DeviceID: 15, IsActive: false},
		{ID: 200, Name: "Lane C", GateID: 2, DeviceID: 20, IsActive: true},
		{ID: 300, Name: "VIP Lane", GateID: 3, DeviceID: 30, IsActive: true},
		{ID: 400, Name: "Stage Lane", GateID: 4, DeviceID: 40, IsActive: true},
	}
	require.NoError(t, db.Create(&booths).Error)

	nodes := []model.Node{
		{ID: 1000, Name: "node-in", GateID: 1},
		{ID: 2000, Name: "node-out", GateID: 2},
		{ID: 3000, Name: "node-vip", GateID: 3},
		{ID: 4000, Name: "node-back", GateID: 4},
	}
	require.NoError(t, db.Create(&nodes).Error)
}

func seedUser(t *testing.T, db *gorm.DB, tag string, userType model.UserType, status model.UserStatus) model.User {
	t.Helper()
	user := model.User{
		RFIDTag:  tag,
		Name:     "Holder of " + tag,
		UserType: userType,
		Status:   status,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func logCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.AccessLog{}).Count(&n).Error)
	return n
}

func reloadUser(t *testing.T, db *gorm.DB, id int64) model.User {
	t.Helper()
	var user model.User
	require.NoError(t, db.First(&user, id).Error)
	return user
}
