// Package server implements the HTTP server using Echo framework.
//
// Routes: the upload page (/), the image workspace API (/api/images,
// /api/layout, /api/pdf), preview blobs (/previews), and the progress
// WebSocket (/ws/progress). A cookie binds each browser to its workspace.
// Handlers split by concern: handlers.go, handlers_api.go, handlers_pdf.go,
// handlers_health.go.
package server
