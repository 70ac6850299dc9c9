package request

import _ "embed"

// Schema is the domain_requests table definition, applied idempotently at
// startup. The approved-domain link references the domains table, so apply
// the domain schema first.
//
//go:embed schema.sql
var Schema string
