// Package metrics writes time-series samples describing room state.
//
// A Sample is a measurement name, a set of tags and a set of fields, the
// shape used by line-protocol time-series stores. Sinks persist samples to
// Postgres (one row per sample, tags and fields as jsonb), to Redis Streams
// (one stream per measurement) or to the service log.
package metrics
