// Package wallet implements the Ethereum wallet primitives behind login:
// EIP-55 checksum addresses, EIP-191 personal message hashing, and
// secp256k1 signature creation and recovery.
package wallet
