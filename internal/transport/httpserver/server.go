package httpserver

import (
	"net/http"
	"time"

	"pet-diary/internal/config"
)

const defaultReadHeaderTimeout = 5 * time.Second

// New builds the API server. WriteTimeout is left unset; per-request deadlines
// come from the router's timeout middleware.
func New(cfg config.Config, handler http.Handler) *http.Server {
	readHeaderTimeout := cfg.Server.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}
