package tenant

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultSchema is the namespace used when a request names no tenant.
const DefaultSchema = "public"

// reservedSchemas can never be claimed by a tenant identifier.
var reservedSchemas = map[string]bool{
	"public":             true,
	"pg_catalog":         true,
	"information_schema": true,
	"pg_toast":           true,
}

// Namespace selects the storage partition for one request's lifetime. It is
// passed explicitly down the call chain; there is no process-wide current
// tenant.
type Namespace struct {
	Schema   string
	TenantID *uuid.UUID
}

// DefaultNamespace returns the global namespace backed by the public schema.
func DefaultNamespace() Namespace {
	return Namespace{Schema: DefaultSchema}
}

// IsDefault reports whether the namespace is the global one.
func (n Namespace) IsDefault() bool {
	return n.Schema == DefaultSchema
}

// Table returns the schema-qualified table name for gorm queries.
func (n Namespace) Table(name string) string {
	return n.Schema + "." + name
}

// SchemaName derives the Postgres schema for a tenant identifier: lowercase,
// runs of non-alphanumerics collapsed to a single underscore, prefixed with
// "tenant_" and capped at the Postgres identifier limit. The raw identifier is
// never interpolated into DDL.
func SchemaName(identifier string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(identifier))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "", fmt.Errorf("tenant identifier %q yields an empty schema name", identifier)
	}
	if reservedSchemas[cleaned] {
		return "", fmt.Errorf("tenant identifier %q is reserved", identifier)
	}

	name := "tenant_" + cleaned
	// Postgres truncates identifiers past 63 bytes; do it explicitly so the
	// persisted mapping matches what the database uses.
	if len(name) > 63 {
		name = name[:63]
	}
	return name, nil
}
