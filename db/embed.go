// Package db embeds the storefront schema applied at startup.
package db

import _ "embed"

// Schema holds the DDL for every storefront table. Statements are
// idempotent so applying the schema on boot is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
