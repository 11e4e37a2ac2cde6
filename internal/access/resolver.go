package access

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rfid-access-backend/internal/model"
)

// ResolveCheckpoint validates that the claimed (gate, booth, device, node)
// tuple is internally consistent and returns the gate's type. Read-only; a
// *TopologyError names the link that failed so the caller can log a precise
// denial reason.
func ResolveCheckpoint(tx *gorm.DB, gateID, boothID, deviceID, nodeID int64) (model.GateType, error) {
	var booth model.Booth
	if err := tx.Select("gate_id", "device_id", "is_active").First(&booth, boothID).Error; err != nil {
		return "", topologyOrFault(err, "booth not found")
	}
	if booth.GateID != gateID {
		return "", &TopologyError{Reason: "booth does not belong to gate"}
	}
	if booth.DeviceID != deviceID {
		return "", &TopologyError{Reason: "device not assigned to booth"}
	}
	if !booth.IsActive {
		return "", &TopologyError{Reason: "booth is not active"}
	}

	var device model.Device
	if err := tx.Select("gate_id").First(&device, deviceID).Error; err != nil {
		return "", topologyOrFault(err, "device not found")
	}
	if device.GateID != gateID {
		return "", &TopologyError{Reason: "device not wired to gate"}
	}

	if err := resolveNode(tx, gateID, nodeID); err != nil {
		return "", err
	}

	return resolveGateType(tx, gateID)
}

// ResolveDeviceCode resolves a raw hardware device code to its (device id,
// booth id) pair at the given gate: the device must be wired to the gate and
// have exactly one active booth attached there.
func ResolveDeviceCode(tx *gorm.DB, gateID int64, deviceCode string) (int64, int64, error) {
	var device model.Device
	err := tx.Where("device_code = ?", deviceCode).First(&device).Error
	if err != nil {
		return 0, 0, topologyOrFault(err, "unknown device code")
	}
	if device.GateID != gateID {
		return 0, 0, &TopologyError{Reason: "device not wired to gate"}
	}

	var booth model.Booth
	err = tx.Where("device_id = ? AND gate_id = ?", device.ID, gateID).First(&booth).Error
	if err != nil {
		return 0, 0, topologyOrFault(err, "no active booth for device")
	}
	if !booth.IsActive {
		return 0, 0, &TopologyError{Reason: "booth is not active"}
	}

	return device.ID, booth.ID, nil
}

func resolveNode(tx *gorm.DB, gateID, nodeID int64) error {
	var node model.Node
	if err := tx.Select("gate_id").First(&node, nodeID).Error; err != nil {
		return topologyOrFault(err, "node not found")
	}
	if node.GateID != gateID {
		return &TopologyError{Reason: "node not mounted at gate"}
	}
	return nil
}

func resolveGateType(tx *gorm.DB, gateID int64) (model.GateType, error) {
	var gate model.Gate
	if err := tx.Select("type").First(&gate, gateID).Error; err != nil {
		return "", topologyOrFault(err, "invalid gate")
	}
	return gate.Type, nil
}

// topologyOrFault keeps missing rows as business outcomes while letting real
// store errors escape as faults.
func topologyOrFault(err error, reason string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &TopologyError{Reason: reason}
	}
	return fmt.Errorf("topology lookup failed: %w", err)
}
