// Package vault implements the encrypted file workflow: upload, listing,
// download, integrity verification, deletion, and RSA-wrapped sharing.
package vault
