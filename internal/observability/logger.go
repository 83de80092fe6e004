// Package observability provides Prometheus metrics functionality for monitoring import runs.
package observability

import "github.com/tphakala/openingbook/internal/logger"

// Package-level cached logger instance for efficiency.
// All logging in this package should use this variable.
var log = logger.Global().Module("telemetry")
