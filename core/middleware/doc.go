// Package middleware contains HTTP middleware for the Fiber admin surface.
//
// It provides cross-cutting concerns that sit between the request and the
// handler.
//
// # Components
//
//   - Auth: validates the X-API-Key header so only operators reach the
//     sync and archive endpoints.
//   - RayID: assigns a unique Request ID (RayID) to every incoming request,
//     injecting it into the context and response headers for tracing.
//
// Both are registered globally in the start command, RayID first so every
// subsequent log line can be correlated.
package middleware
