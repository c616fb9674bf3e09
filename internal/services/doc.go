// Package services implements the business logic layer between HTTP handlers
// and the data pipeline.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. No shared state between requests
//	4. Error handling and transformation at the boundary
//
// # Available Services
//
//	- SamplingService: runs the workbook pipeline and shapes the display
//	  tables and the download CSV
//	- HealthService: liveness and version reporting
//
// # Error Handling
//
// Services surface pipeline sentinels (schema errors, range errors) unchanged
// so the transport layer can map them to problem responses, and wrap
// service-level refusals in APIError values.
package services
