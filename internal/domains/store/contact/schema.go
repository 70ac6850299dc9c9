package contact

import _ "embed"

// Schema is the public_contacts table definition. Depends on the domains
// table.
//
//go:embed schema.sql
var Schema string
