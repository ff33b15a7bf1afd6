package api

import (
	"net/http"

	"grant-intake/internal/common/config"
)

// NewServer builds the HTTP server with timeouts from cfg.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: config.GetDuration(cfg.ReadHeaderTimeout),
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}
