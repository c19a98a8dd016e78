// Package crypto implements the BlockVault primitives: RSA sharing keys
// with OAEP key wrapping, the passphrase-derived envelope used for file and
// keystore encryption, and public key fingerprints.
package crypto
