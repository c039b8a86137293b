// Package repository implements the session store data access layer.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles the reads and writes for one record type.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Get, Upsert, Delete, Find...)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # Whole-Document Writes
//
// An event session is stored as a single document with rosters, standby
// queue, and posted message ledger nested inside. Every mutation rewrites
// the full document with UPSERT ... CONTENT, so a write always reflects one
// coherent roster state.
//
// # Query Patterns
//
// Common query patterns used:
//
//   - Parameterized queries with $variable syntax for security
//   - type::thing() for safe ID handling
//   - Human-meaningful record IDs (event code, channel ID, profile name)
//
// # Example Usage
//
//	repo := NewEventRepository(db)
//	session, err := repo.Get(ctx, "EVT-1A2B3C4D")
//	if err != nil {
//	    return err
//	}
//	if session == nil {
//	    // Handle not found
//	}
package repository
