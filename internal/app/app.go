package app

import (
	"context"
	"time"

	"nostrdm/internal/relay"
	messagesvc "nostrdm/internal/services/message"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Timeout time.Duration // per-call relay deadline
	Proxy   string        // optional SOCKS5 proxy, e.g. Tor at 127.0.0.1:9050
}

// App bundles the relay pool and services for the CLI.
type App struct {
	Pool     *relay.Pool
	Messages *messagesvc.Service
	timeout  time.Duration
}

// New constructs the dependency graph from cfg.
func New(cfg Config) *App {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	pool := relay.NewPool(relay.Dialer{Proxy: cfg.Proxy})
	return &App{
		Pool:     pool,
		Messages: messagesvc.New(pool, pool),
		timeout:  cfg.Timeout,
	}
}

// Context returns the deadline-bound context for one relay operation.
func (a *App) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}
