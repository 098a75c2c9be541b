// Package db embeds the SQL schema so the binary can bootstrap its own
// tables at startup, without a migration step in the deploy pipeline.
package db

import _ "embed"

// Schema is the full marketplace DDL, applied idempotently on boot.
//
//go:embed migrations/001_schema.sql
var Schema string
