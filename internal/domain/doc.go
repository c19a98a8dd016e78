// Package domain defines the core BlockVault types and the interfaces
// between services, stores, and transports.
//
// Types here are plain records safe to serialize; behavior lives in the
// service packages.
package domain
