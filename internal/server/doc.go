// Package server exposes the vault over HTTP: wallet auth, encrypted file
// storage and sharing, the legal document workflow, and verifiable
// summaries.
package server
