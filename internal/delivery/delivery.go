// Package delivery defines the transport-facing contracts of the service.
package delivery

import "context"

// Delivery is a long-running transport surface. Serve blocks until the
// surface shuts down or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
