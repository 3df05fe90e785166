// Package db holds the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL for all application tables. Statements are
// idempotent so it can be applied on every startup.
//
//go:embed schema.sql
var Schema string
