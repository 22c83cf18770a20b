package config

import "time"

// Application constants
const (
	AppName    = "jiraview"
	AppVersion = "1.0.0"

	DefaultPort           = 8080
	DefaultMaxUploadBytes = 32 << 20
	DefaultRateLimit      = 100
	DefaultBurstSize      = 50
	DefaultLogLevel       = "info"

	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File paths, relative to the base directory
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"
	DefaultWebDir  = "web"

	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
