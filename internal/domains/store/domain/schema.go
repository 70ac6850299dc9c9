package domain

import _ "embed"

// Schema is the domains table definition, applied idempotently at startup.
//
//go:embed schema.sql
var Schema string
