// Package delivery defines the contract shared by every transport surface
// of the application. Servers are collected into an fx value group and
// started together; each one blocks inside Serve until shutdown.
package delivery

import "context"

// Delivery is a transport surface (HTTP API, reminder worker) that can be
// started by the application entrypoint.
type Delivery interface {
	Serve(ctx context.Context) error
}
