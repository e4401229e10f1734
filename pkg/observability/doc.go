/*
Package observability exports Prometheus metrics for a running complog process.

Metrics subscribes to registry events as a domain.EventHandler and counts
transport traffic through the Record helpers.
*/
package observability
