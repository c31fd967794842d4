// Package observability provides structured logging and Prometheus metrics
// for the publication cost service.
//
// Logging uses zerolog with JSON output by default and console output for
// development. Metrics cover the analysis pipeline (runs, works, publisher
// conflicts, attributed cost) and metadata-source HTTP traffic.
package observability
