// Package config provides centralized configuration management for edipulse.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EDIPULSE_<SECTION>_<FIELD>:
//
//	EDIPULSE_SERVER_PORT=8080
//	EDIPULSE_LOGGING_LEVEL=debug
//	EDIPULSE_PIPELINE_TOP_N=10
//	EDIPULSE_PIPELINE_ON_PARSE_ERROR=abort
//	EDIPULSE_CONFIG=/etc/edipulse.yaml
//
// # Validation
//
// Every field carries validator/v10 tags; Load fails when any constraint is
// violated, so callers never see a half-valid Config.
package config
