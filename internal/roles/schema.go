package roles

import _ "embed"

// Schema is the user_domain_roles table definition. Depends on the domains
// table.
//
//go:embed schema.sql
var Schema string
