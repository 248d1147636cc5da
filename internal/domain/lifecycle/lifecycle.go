// Package lifecycle holds shared limits for start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single lifecycle step such as a ping or a graceful shutdown.
const DefaultTimeout = 10 * time.Second
