package serial

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/model"
)

// DeviceCode is the hardware reader identifier as sent on the wire. Firmware
// revisions disagree on whether it is a JSON string or a bare number, so both
// are accepted.
type DeviceCode string

func (d *DeviceCode) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DeviceCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = DeviceCode(n.String())
	return nil
}

// Request is one scan read from the checkpoint link, one JSON object per line.
type Request struct {
	Type  string     `json:"t"`
	ID    string     `json:"id"`
	MAC   string     `json:"mac"`
	DevID DeviceCode `json:"dev_id"`
	UID   string     `json:"uid"`
}

// Response is the decision sent back to the checkpoint hardware.
type Response struct {
	Type   string  `json:"t"`
	ID     string  `json:"id"`
	MAC    string  `json:"mac"`
	Status int     `json:"status"`
	TS     int64   `json:"ts"`
	Event  int     `json:"event"`
	Ticket *string `json:"ticket"`
	Name   string  `json:"name"`
}

// ParseRequest decodes and validates one line from the link. Lines that are
// not well-formed scan requests are reported as errors and skipped by the
// caller; the device retries on its own schedule.
func ParseRequest(line []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("malformed link message: %w", err)
	}
	if req.Type != "req" {
		return nil, fmt.Errorf("unexpected message type %q", req.Type)
	}
	if req.UID == "" || req.DevID == "" {
		return nil, fmt.Errorf("scan request missing uid or dev_id")
	}
	return &req, nil
}

// BuildResponse maps a decision onto the wire shape the firmware expects.
func BuildResponse(req *Request, dec access.Decision, now time.Time) Response {
	status := 0
	if dec.Result == model.ResultPass {
		status = 1
	}

	var ticket *string
	if dec.UserID != nil {
		t := "T" + strconv.FormatInt(*dec.UserID, 10)
		ticket = &t
	}

	name := "Guest"
	if dec.UserName != nil && *dec.UserName != "" {
		name = *dec.UserName
	}

	return Response{
		Type:   "resp",
		ID:     req.ID,
		MAC:    req.MAC,
		Status: status,
		TS:     now.Unix(),
		Event:  model.EventCode(dec.EventType),
		Ticket: ticket,
		Name:   name,
	}
}

// DeniedResponse is the generic refusal sent when the engine faulted and no
// decision exists; the device must never be left waiting.
func DeniedResponse(req *Request, now time.Time) Response {
	return Response{
		Type:   "resp",
		ID:     req.ID,
		MAC:    req.MAC,
		Status: 0,
		TS:     now.Unix(),
		Event:  model.EventCode(model.EventDenied),
		Ticket: nil,
		Name:   "Guest",
	}
}
