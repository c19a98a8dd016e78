package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// RSAKeyBits is the modulus size for sharing keypairs.
const RSAKeyBits = 2048

var (
	// ErrNotRSAKey is returned when a PEM block decodes to a key of a
	// different type.
	ErrNotRSAKey = errors.New("not an RSA key")
	// ErrBadPEM is returned for malformed PEM input.
	ErrBadPEM = errors.New("invalid PEM block")
)

// GenerateRSA creates a fresh sharing keypair.
func GenerateRSA() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, RSAKeyBits)
}

// EncodePrivateKeyPEM serializes a private key as PKCS#8 PEM.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKeyPEM serializes a public key as PKIX PEM, the format
// registered with the server and used by share grants.
func EncodePublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// ParsePrivateKeyPEM reads a PKCS#8 PEM private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrBadPEM
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return rsaKey, nil
}

// ParsePublicKeyPEM reads a PKIX PEM public key.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrBadPEM
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return rsaKey, nil
}

// WrapKey encrypts a file passphrase to a recipient's public key with
// RSA-OAEP over SHA-256.
func WrapKey(pub *rsa.PublicKey, passphrase []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, passphrase, nil)
}

// UnwrapKey recovers a wrapped passphrase with the private key.
func UnwrapKey(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
}
