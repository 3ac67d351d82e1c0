// Package http implements the HTTP handlers of the edipulse service.
//
// Handlers only parse requests and format responses; analysis runs in
// internal/services and every failure goes through the RFC 7807 error
// handler in internal/errors.
//
// # Endpoints
//
//	POST /api/analyze   multipart upload, JSON report (or xlsx with format=xlsx)
//	GET  /api/health    liveness plus run and feed counters
//	GET  /api/version   build information
//
// POST /api/analyze accepts these multipart fields:
//
//	files           one or more primary billing files, in batch order
//	xref            customer cross-reference files
//	partners        trading partner report files
//	maps            map configuration files
//	top_n           ranking depth, 1 to 100
//	measure         documents or kilocharacters
//	on_parse_error  skip or abort
//	format          json (default) or xlsx
package http
