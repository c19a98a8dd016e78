// Package store persists vault metadata in SQLite through Bun. Encrypted
// file content lives in the blob store; this package only holds records.
package store
