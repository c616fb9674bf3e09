// Package http contains the HTTP transport layer: chi handlers that parse
// multipart uploads and filter bounds, invoke the services layer, and render
// JSON or CSV responses. Errors surface as RFC 7807 problem documents through
// the shared ErrorHandler.
package http
