// Package app wires the port sampling web application together.
//
// It loads configuration, initializes structured logging and OpenTelemetry,
// constructs the sampling and health services, and assembles the chi router
// with the full middleware stack. The Application type owns the HTTP server
// lifecycle: Start launches the listener, Stop drains in-flight requests and
// flushes telemetry, and Run ties both to OS signals for use from main.
package app
