// Package domain defines the program record returned to organization owners and admins.
package domain

// Record is one row of the programs table, keyed by column name.
// Records are returned verbatim: no projection, renaming, or filtering.
type Record map[string]any

// OrganizationID returns the record's organization_id column, or "" when absent.
func (r Record) OrganizationID() string {
	id, _ := r["organization_id"].(string)
	return id
}
