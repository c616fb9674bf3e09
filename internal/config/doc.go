// Package config provides centralized configuration management for the port
// sampling service. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PORTSAMPLER_* for namespacing:
//
//	PORTSAMPLER_SERVER_PORT=8080
//	PORTSAMPLER_LOGGING_LEVEL=info
//	PORTSAMPLER_PIPELINE_SHEET_NAME=RawData
//	PORTSAMPLER_PIPELINE_MAX_UPLOAD_BYTES=33554432
//
// Fixed domain values (workbook column headers, the scanned-identifier length
// rule, the export column mapping) live in constants.go rather than in the
// runtime configuration: they describe the upstream workbook format, not a
// deployment choice.
package config
