// Package api provides the HTTP REST API and WebSocket server for GreenGiant.
//
// It exposes session authentication, threshold management, manual actuator
// control, device ingestion endpoints, and a live WebSocket event stream to
// dashboard viewers. The WebSocket hub implements bus.Bus; everything the
// domain services publish fans out to connected viewers from here.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
