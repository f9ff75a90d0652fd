// Package delivery holds the contract shared by the process's inbound transports.
package delivery

import "context"

// Delivery is a transport that serves until it is stopped by the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
