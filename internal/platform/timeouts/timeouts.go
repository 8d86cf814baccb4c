// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// MCPRequest caps how long a POSTed JSON-RPC request waits for its response.
const MCPRequest = 30 * time.Second

// MCPShutdown is longer than MCPRequest so in-flight requests can finish.
const MCPShutdown = 35 * time.Second

// HealthProbe caps a single gRPC health check call.
const HealthProbe = time.Second
