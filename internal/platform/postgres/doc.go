// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each store accepts a store.DBTX so the same code runs
// against a *sql.DB or inside a *sql.Tx, and maps driver errors to the
// store sentinel errors via MapError.
package postgres
