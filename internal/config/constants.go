package config

import "edipulse/pkg/contracts"

// Application constants
const (
	// Application Info
	AppName    = "EDI Pulse"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. EDIPULSE_PIPELINE_TOP_N
	EnvPrefix = "EDIPULSE"

	// Upload policy
	DefaultMaxFileSize    = 50 * 1024 * 1024
	DefaultMinFileSize    = 1
	DefaultMaxUploadBytes = 256 * 1024 * 1024

	// Pipeline
	DefaultWorkers = 4
	DefaultTopN    = 5

	// ParseError handling policies
	ParsePolicySkip  = "skip"
	ParsePolicyAbort = "abort"

	// Rate Limiting
	DefaultRateLimit = 10 // analyses per second
	DefaultBurstSize = 20

	DefaultLogFile   = "logs/edipulse.log"
	DefaultOutputDir = "reports"

	// Supported file extensions
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
	ExtXLSM = ".xlsm"
	ExtCSV  = ".csv"
)
