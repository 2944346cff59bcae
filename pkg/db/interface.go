package db

import "database/sql"

// DBProvider is an interface for database clients that provide access to a
// sql.DB handle. The Store accepts any provider, which keeps it testable
// against a plain local Postgres as well as Supabase.
type DBProvider interface {
	DB() *sql.DB
}
