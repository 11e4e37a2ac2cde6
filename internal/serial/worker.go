// Package serial runs the checkpoint-link worker: a long-lived reader loop
// that answers scan requests from the gate hardware over a serial port.
package serial

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	bugst "go.bug.st/serial"

	"rfid-access-backend/config"
	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/debounce"
)

const reconnectDelay = 3 * time.Second

// Worker reads newline-delimited scan requests from the checkpoint link,
// consults the debounce cache, and answers with the engine's decision.
type Worker struct {
	cfg    config.SerialConfig
	engine *access.Engine
	cache  *debounce.Cache

	// openPort is swapped in tests to drive the loop with an in-memory pipe.
	openPort func() (io.ReadWriteCloser, error)
}

// NewWorker creates a checkpoint-link worker for the configured port.
func NewWorker(cfg config.SerialConfig, engine *access.Engine, cache *debounce.Cache) *Worker {
	w := &Worker{cfg: cfg, engine: engine, cache: cache}
	w.openPort = w.openSerialPort
	return w
}

// ShouldStart reports whether the worker has enough configuration to run.
func (w *Worker) ShouldStart() bool {
	if !w.cfg.Enabled {
		return false
	}
	if w.cfg.Port == "" {
		log.Println("[serial] port not configured; skipping checkpoint link worker")
		return false
	}
	if w.cfg.GateID == 0 || w.cfg.NodeID == 0 {
		log.Println("[serial] gate/node identity not configured; skipping checkpoint link worker")
		return false
	}
	return true
}

// Run opens the port and serves requests until ctx is cancelled, reconnecting
// with a fixed backoff on link errors.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		link, err := w.openPort()
		if err != nil {
			log.Printf("[serial] open %s failed: %v - retrying in %v", w.cfg.Port, err, reconnectDelay)
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}

		log.Printf("[serial] link open on %s @ %d", w.cfg.Port, w.cfg.Baud)
		w.serveLink(ctx, link)
		link.Close()

		if !sleepCtx(ctx, reconnectDelay) {
			return
		}
	}
}

// serveLink processes one connection until read error or cancellation.
func (w *Worker) serveLink(ctx context.Context, link io.ReadWriteCloser) {
	scanner := bufio.NewScanner(link)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		req, err := ParseRequest(line)
		if err != nil {
			log.Printf("[serial] dropping message: %v", err)
			continue
		}

		resp := w.handleRequest(ctx, req)
		if err := w.writeResponse(link, resp); err != nil {
			log.Printf("[serial] write failed: %v", err)
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("[serial] link read error: %v", err)
	}
}

// handleRequest answers one scan, reusing a memoized decision when the same
// physical tap is retransmitted within the debounce window.
func (w *Worker) handleRequest(ctx context.Context, req *Request) Response {
	key := debounce.Key{
		RFIDTag:    req.UID,
		DeviceCode: string(req.DevID),
		GateID:     w.cfg.GateID,
		NodeID:     w.cfg.NodeID,
	}

	if dec, ok := w.cache.Get(key); ok {
		return BuildResponse(req, dec, time.Now())
	}

	dec, err := w.engine.DecideByDeviceCode(ctx, req.UID, string(req.DevID), w.cfg.GateID, w.cfg.NodeID)
	if err != nil {
		log.Printf("[serial] decision fault for tag %s: %v", req.UID, err)
		fault := access.ScanRequest{RFIDTag: req.UID, GateID: w.cfg.GateID, NodeID: w.cfg.NodeID}
		if logErr := w.engine.LogFault(ctx, fault, err); logErr != nil {
			log.Printf("[serial] fault log failed: %v", logErr)
		}
		return DeniedResponse(req, time.Now())
	}

	w.cache.Put(key, dec)
	return BuildResponse(req, dec, time.Now())
}

func (w *Worker) writeResponse(link io.Writer, resp Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = link.Write(payload)
	return err
}

func (w *Worker) openSerialPort() (io.ReadWriteCloser, error) {
	port, err := bugst.Open(w.cfg.Port, &bugst.Mode{BaudRate: w.cfg.Baud})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(w.cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
