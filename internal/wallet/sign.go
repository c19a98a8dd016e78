package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"blockvault/internal/domain"
)

// ErrInvalidSignature is returned when a signature is not 65 bytes or its
// recovery id is out of range.
var ErrInvalidSignature = errors.New("invalid signature")

// PersonalMessageHash computes the EIP-191 digest wallets actually sign:
// keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg).
func PersonalMessageHash(msg string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	return keccak256([]byte(prefixed))
}

// SignPersonal signs msg with the wallet key and returns the 65-byte
// Ethereum signature r || s || v with v in {27, 28}.
func SignPersonal(key *secp256k1.PrivateKey, msg string) []byte {
	hash := PersonalMessageHash(msg)
	// SignCompact emits [v, r, s] with v = 27 + recovery id for an
	// uncompressed key; Ethereum wants the v byte at the end.
	compact := secpecdsa.SignCompact(key, hash, false)
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig
}

// RecoverPersonal recovers the checksummed signer address of an EIP-191
// signature over msg. Both v in {27, 28} and the raw {0, 1} form are
// accepted.
func RecoverPersonal(msg string, sig []byte) (domain.Address, error) {
	if len(sig) != 65 {
		return "", ErrInvalidSignature
	}
	v := sig[64]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return "", ErrInvalidSignature
	}

	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:], sig[:64])

	pub, _, err := secpecdsa.RecoverCompact(compact, PersonalMessageHash(msg))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return AddressFromPubKey(pub), nil
}

// ParseSignatureHex decodes a 0x-prefixed hex signature as produced by
// browser wallets.
func ParseSignatureHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	return raw, nil
}

// GenerateKey creates a new wallet private key.
func GenerateKey() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// KeyFromBytes restores a wallet key from its 32-byte scalar.
func KeyFromBytes(b []byte) *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(b)
}
