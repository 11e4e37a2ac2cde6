package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"rfid-access-backend/config"
	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *access.Engine
	auth    config.AuthConfig
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *access.Engine, authCfg config.AuthConfig, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		auth:    authCfg,
		webpush: webpushOptions,
	}
}
