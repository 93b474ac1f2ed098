// Package artifact persists summary products as parquet tables and
// optionally publishes them to S3-compatible object storage.
//
// Two tables are written: the flattened posterior sample set (one column
// per parameter plus log_posterior, chain and draw) and the MAP estimate
// (one row per parameter with its 1-sigma and 2-sigma bounds).
package artifact
