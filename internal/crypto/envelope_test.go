package crypto_test

import (
	"bytes"
	"testing"

	"blockvault/internal/crypto"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	plain := []byte("the vault contents")

	blob, err := crypto.Seal("correct horse", plain, "")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := crypto.Open("correct horse", blob, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatal("plaintext mismatch after round trip")
	}
}

func TestOpen_WrongPassphrase(t *testing.T) {
	blob, err := crypto.Seal("correct", []byte("x"), "")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := crypto.Open("wrong", blob, ""); err != crypto.ErrWrongPassphrase {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestOpen_AADMismatch(t *testing.T) {
	blob, err := crypto.Seal("pass", []byte("x"), "case-123")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := crypto.Open("pass", blob, "case-456"); err == nil {
		t.Fatal("expected failure with mismatched AAD")
	}
	if _, err := crypto.Open("pass", blob, "case-123"); err != nil {
		t.Fatalf("matching AAD should open: %v", err)
	}
}

func TestOpen_GarbageBlob(t *testing.T) {
	if _, err := crypto.Open("pass", []byte("not json"), ""); err == nil {
		t.Fatal("expected parse error")
	}
}
