// Package services sits between the HTTP handlers and the analysis pipeline.
//
// AnalysisService builds one pipeline.Session per request from the configured
// pipeline section plus per-request overrides, wires progress, tracing and
// metrics into it, and keeps run counters. HealthService reports those
// counters together with the progress hub's delivery stats.
package services
