package wallet_test

import (
	"testing"

	"blockvault/internal/domain"
	"blockvault/internal/wallet"
)

// Reference vectors from the EIP-55 specification.
func TestChecksumAddress_Vectors(t *testing.T) {
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, want := range vectors {
		got, err := wallet.ChecksumAddress(want)
		if err != nil {
			t.Fatalf("ChecksumAddress(%s): %v", want, err)
		}
		if got != domain.Address(want) {
			t.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
		// Lowercase input must checksum to the same form.
		got, err = wallet.ChecksumAddress("0x" + toLower(want[2:]))
		if err != nil {
			t.Fatalf("lowercase ChecksumAddress: %v", err)
		}
		if got != domain.Address(want) {
			t.Errorf("lowercase checksum mismatch: got %s, want %s", got, want)
		}
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

func TestChecksumAddress_Invalid(t *testing.T) {
	bad := []string{"", "0x123", "5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xZZ6916095ca1df60bB79Ce92cE3Ea74c37c5d359"}
	for _, in := range bad {
		if _, err := wallet.ChecksumAddress(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestSignRecover_RoundTrip(t *testing.T) {
	key, err := wallet.GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	addr := wallet.AddressFromPubKey(key.PubKey())

	msg := domain.LoginMessage("deadbeef")
	sig := wallet.SignPersonal(key, msg)
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}

	got, err := wallet.RecoverPersonal(msg, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !got.Equal(addr) {
		t.Fatalf("recovered %s, want %s", got, addr)
	}
}

func TestRecover_RawRecoveryID(t *testing.T) {
	key, err := wallet.GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := "hello"
	sig := wallet.SignPersonal(key, msg)
	sig[64] -= 27 // some wallets emit v in {0, 1}

	got, err := wallet.RecoverPersonal(msg, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !got.Equal(wallet.AddressFromPubKey(key.PubKey())) {
		t.Fatal("recovered address mismatch with raw recovery id")
	}
}

func TestRecover_WrongMessage(t *testing.T) {
	key, err := wallet.GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sig := wallet.SignPersonal(key, "message one")
	got, err := wallet.RecoverPersonal("message two", sig)
	if err == nil && got.Equal(wallet.AddressFromPubKey(key.PubKey())) {
		t.Fatal("signature over a different message must not recover the signer")
	}
}

func TestRecover_BadLength(t *testing.T) {
	if _, err := wallet.RecoverPersonal("m", make([]byte, 64)); err == nil {
		t.Fatal("expected error for 64-byte signature")
	}
}
