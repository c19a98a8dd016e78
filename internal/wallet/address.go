package wallet

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"

	"blockvault/internal/domain"
)

// ErrInvalidAddress is returned for strings that are not 0x-prefixed
// 20-byte hex addresses.
var ErrInvalidAddress = errors.New("invalid address")

// keccak256 is the legacy Keccak (pre-SHA3 padding) Ethereum uses.
func keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// ChecksumAddress validates addr and returns it in EIP-55 mixed-case form.
func ChecksumAddress(addr string) (domain.Address, error) {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return "", ErrInvalidAddress
	}
	lower := strings.ToLower(addr[2:])
	if _, err := hex.DecodeString(lower); err != nil {
		return "", ErrInvalidAddress
	}

	sum := keccak256([]byte(lower))
	out := make([]byte, 40)
	for i := 0; i < 40; i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			// Uppercase when the corresponding nibble of the hash is >= 8.
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return domain.Address("0x" + string(out)), nil
}

// AddressFromPubKey derives the Ethereum address of an uncompressed
// secp256k1 public key: the low 20 bytes of Keccak-256 over X||Y.
func AddressFromPubKey(pub *secp256k1.PublicKey) domain.Address {
	raw := pub.SerializeUncompressed() // 0x04 || X || Y
	sum := keccak256(raw[1:])
	addr, _ := ChecksumAddress("0x" + hex.EncodeToString(sum[12:]))
	return addr
}
