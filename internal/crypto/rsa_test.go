package crypto_test

import (
	"bytes"
	"testing"

	"blockvault/internal/crypto"
)

func TestRSA_PEMRoundTrip(t *testing.T) {
	key, err := crypto.GenerateRSA()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	privPEM, err := crypto.EncodePrivateKeyPEM(key)
	if err != nil {
		t.Fatalf("encode private: %v", err)
	}
	pubPEM, err := crypto.EncodePublicKeyPEM(&key.PublicKey)
	if err != nil {
		t.Fatalf("encode public: %v", err)
	}

	priv2, err := crypto.ParsePrivateKeyPEM(privPEM)
	if err != nil {
		t.Fatalf("parse private: %v", err)
	}
	pub2, err := crypto.ParsePublicKeyPEM(pubPEM)
	if err != nil {
		t.Fatalf("parse public: %v", err)
	}
	if priv2.N.Cmp(key.N) != 0 || pub2.N.Cmp(key.N) != 0 {
		t.Fatal("modulus mismatch after PEM round trip")
	}
}

func TestWrapUnwrapKey(t *testing.T) {
	key, err := crypto.GenerateRSA()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	passphrase := []byte("file-passphrase-42")

	wrapped, err := crypto.WrapKey(&key.PublicKey, passphrase)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	got, err := crypto.UnwrapKey(key, wrapped)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if !bytes.Equal(got, passphrase) {
		t.Fatal("passphrase mismatch after wrap/unwrap")
	}

	other, err := crypto.GenerateRSA()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := crypto.UnwrapKey(other, wrapped); err == nil {
		t.Fatal("unwrap with wrong key should fail")
	}
}

func TestParsePEM_Garbage(t *testing.T) {
	if _, err := crypto.ParsePublicKeyPEM([]byte("junk")); err != crypto.ErrBadPEM {
		t.Fatalf("expected ErrBadPEM, got %v", err)
	}
}
