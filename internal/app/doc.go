// Package app provides the application service layer.
//
// Orchestrates use cases: review analysis, catalog writes and reads, rating statistics.
// Sits between HTTP handlers and domain repositories. Depends on domain interfaces, not concrete implementations.
package app
