package storage

// Blob abstracts one durable JSON table. The event log, the summary
// cursors and the monthly report tags are three independent tables
// sharing conversation ids as keys. Implementations can be file-based,
// database, etc. and must be safe for concurrent use.
type Blob interface {
	// Load decodes the whole table into v. A missing or empty table
	// leaves v untouched and is not an error.
	Load(v any) error
	// Save replaces the whole table with v.
	Save(v any) error
}
