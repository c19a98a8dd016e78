// Package auth implements wallet-based authentication: single-use login
// nonces, EIP-191 signature verification, bearer token issuance, and the
// static role table guarding the API.
package auth
