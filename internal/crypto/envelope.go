package crypto

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"blockvault/internal/util/memzero"
)

const (
	// The current supported version of the encrypted envelope format.
	envelopeFormatVersion = 1

	saltBytes = 16
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified / corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted data")

// envelope is the serialized structure holding the ciphertext and KDF
// parameters. The optional AAD is authenticated but not stored; callers must
// present the same value to open the envelope.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// Seal encrypts plaintext under a passphrase-derived key. The aad string is
// bound into the authentication tag; pass "" for none.
func Seal(passphrase string, plaintext []byte, aad string) ([]byte, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	N, r, p := scryptParamsDefault()
	key, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plaintext, additionalData(salt, aad))

	return json.Marshal(envelope{
		V:      envelopeFormatVersion,
		Salt:   salt,
		N:      N,
		R:      r,
		P:      p,
		Nonce:  nonce,
		Cipher: ct,
	})
}

// Open decrypts an envelope produced by Seal. The aad must match the value
// supplied at seal time.
func Open(passphrase string, blob []byte, aad string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	if env.V > envelopeFormatVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.V)
	}
	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, additionalData(env.Salt, aad))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// additionalData binds the salt and caller AAD into the tag.
func additionalData(salt []byte, aad string) []byte {
	if aad == "" {
		return salt
	}
	return append(append([]byte(nil), salt...), aad...)
}
