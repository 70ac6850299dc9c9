package information

import _ "embed"

// Schema is the domain_information table definition. Depends on the
// domains table existing first.
//
//go:embed schema.sql
var Schema string
