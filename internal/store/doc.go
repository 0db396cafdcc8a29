// Package store defines the persistence interfaces and shared error types
// used by the service layer. Implementations live in platform/postgres.
package store
