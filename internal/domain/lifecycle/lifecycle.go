// Package lifecycle holds shared timeouts for application start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds the time a single start or stop hook may take.
const DefaultTimeout = 10 * time.Second
