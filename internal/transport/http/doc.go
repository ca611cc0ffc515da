// Package http contains the chi handlers for the order analytics API.
//
// Handlers translate between HTTP and the services layer. All error
// responses follow RFC 7807 via the shared ErrorHandler, and every
// response carries the request's trace ID for correlation with logs.
package http
