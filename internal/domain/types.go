package domain

import "strings"

// Address is an EIP-55 checksummed Ethereum address ("0x" + 40 hex chars).
// Comparisons are case-insensitive; storage keeps the checksummed form.
type Address string

// Equal reports whether two addresses refer to the same account.
func (a Address) Equal(b Address) bool {
	return strings.EqualFold(string(a), string(b))
}

func (a Address) String() string { return string(a) }

// Role is the caller's position in the static permission table.
type Role int

const (
	RoleViewer Role = 1
	RoleOwner  Role = 2
	RoleAdmin  Role = 3
)

// String returns the lowercase role name used on the wire.
func (r Role) String() string {
	switch r {
	case RoleViewer:
		return "viewer"
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// User is a registered wallet account.
type User struct {
	Address    Address `json:"address"`
	Role       Role    `json:"role"`
	SharingKey string  `json:"sharing_pubkey,omitempty"` // PEM-encoded RSA public key
	CreatedAt  int64   `json:"created_at"`               // unix seconds
}

// Nonce is a single-use login challenge bound to an address.
type Nonce struct {
	Address   Address
	Value     string
	CreatedAt int64 // unix seconds
}

// LoginMessage is the exact text a wallet signs to authenticate.
func LoginMessage(nonce string) string {
	return "BlockVault login nonce: " + nonce
}
