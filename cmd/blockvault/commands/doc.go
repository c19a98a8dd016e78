// Package commands implements the blockvault CLI: wallet keystore
// management, login, and the vault, sharing, and legal operations against
// a server.
package commands
