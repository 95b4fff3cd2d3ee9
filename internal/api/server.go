// Package api — HTTP-поверхность мини-приложения.
// server.go создаёт настроенный *http.Server.
package api

import (
	"fmt"
	"net/http"
	"time"
)

// NewServer создаёт HTTP-сервер API с разумными таймаутами.
func NewServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
