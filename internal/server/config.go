package server

import (
	"fmt"
	"time"

	"github.com/agentstation/tasksync/internal/server/memory"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Authentication settings
	AuthEnabled bool

	// Performance settings
	RateLimit int // Requests per minute per user (0 to disable)

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Seed populates the in-memory store. Nil means memory.DefaultSeed.
	Seed *memory.Seed
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		PathPrefix:   "/api",
		CORSEnabled:  true,
		CORSOrigins:  []string{},
		AuthEnabled:  true,
		RateLimit:    600,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
