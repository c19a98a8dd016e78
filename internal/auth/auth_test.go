package auth_test

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"blockvault/internal/auth"
	"blockvault/internal/domain"
	"blockvault/internal/wallet"
)

type memUsers struct {
	m map[domain.Address]domain.User
}

func newMemUsers() *memUsers { return &memUsers{m: map[domain.Address]domain.User{}} }

func (s *memUsers) UpsertUser(_ context.Context, addr domain.Address) (domain.User, error) {
	if u, ok := s.m[addr]; ok {
		return u, nil
	}
	u := domain.User{Address: addr, Role: domain.RoleOwner, CreatedAt: time.Now().Unix()}
	s.m[addr] = u
	return u, nil
}

func (s *memUsers) GetUser(_ context.Context, addr domain.Address) (domain.User, bool, error) {
	u, ok := s.m[addr]
	return u, ok, nil
}

func (s *memUsers) SetSharingKey(_ context.Context, addr domain.Address, pemKey string) error {
	u := s.m[addr]
	u.SharingKey = pemKey
	s.m[addr] = u
	return nil
}

func (s *memUsers) SetRole(_ context.Context, addr domain.Address, role domain.Role) error {
	u := s.m[addr]
	u.Role = role
	s.m[addr] = u
	return nil
}

type memNonces struct {
	m map[domain.Address]domain.Nonce
}

func newMemNonces() *memNonces { return &memNonces{m: map[domain.Address]domain.Nonce{}} }

func (s *memNonces) PutNonce(_ context.Context, n domain.Nonce) error {
	s.m[n.Address] = n
	return nil
}

func (s *memNonces) GetNonce(_ context.Context, addr domain.Address) (domain.Nonce, bool, error) {
	n, ok := s.m[addr]
	return n, ok, nil
}

func (s *memNonces) DeleteNonce(_ context.Context, addr domain.Address) error {
	delete(s.m, addr)
	return nil
}

func newService(t *testing.T) (*auth.Service, *memUsers, *memNonces) {
	t.Helper()
	users, nonces := newMemUsers(), newMemNonces()
	signer := auth.NewTokenSigner([]byte("test-secret"), time.Hour)
	return auth.NewService(users, nonces, signer, nil), users, nonces
}

func TestChallenge_ChecksumsAddress(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	key, _ := wallet.GenerateKey()
	want := wallet.AddressFromPubKey(key.PubKey())

	addr, nonce, msg, err := svc.Challenge(ctx, strings.ToLower(want.String()))
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if addr != want {
		t.Errorf("address = %s, want checksummed %s", addr, want)
	}
	if nonce == "" || msg != domain.LoginMessage(nonce) {
		t.Errorf("nonce = %q, message = %q", nonce, msg)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	key, err := wallet.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := wallet.AddressFromPubKey(key.PubKey())

	_, _, msg, err := svc.Challenge(ctx, addr.String())
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	sig := wallet.SignPersonal(key, msg)

	token, user, err := svc.Login(ctx, addr.String(), "0x"+hex.EncodeToString(sig))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !user.Address.Equal(addr) {
		t.Errorf("user address = %s, want %s", user.Address, addr)
	}
	if user.Role != domain.RoleOwner {
		t.Errorf("role = %v, want owner", user.Role)
	}

	got, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !got.Address.Equal(addr) {
		t.Errorf("authenticated as %s, want %s", got.Address, addr)
	}
}

func TestLogin_NonceIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	key, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())
	_, _, msg, err := svc.Challenge(ctx, addr.String())
	if err != nil {
		t.Fatal(err)
	}
	sigHex := "0x" + hex.EncodeToString(wallet.SignPersonal(key, msg))

	if _, _, err := svc.Login(ctx, addr.String(), sigHex); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, _, err := svc.Login(ctx, addr.String(), sigHex); !errors.Is(err, auth.ErrNoNonce) {
		t.Fatalf("replayed login error = %v, want ErrNoNonce", err)
	}
}

func TestLogin_ExpiredNonce(t *testing.T) {
	ctx := context.Background()
	svc, _, nonces := newService(t)

	key, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())
	stale := domain.Nonce{
		Address:   addr,
		Value:     "deadbeef",
		CreatedAt: time.Now().Add(-auth.NonceTTL - time.Minute).Unix(),
	}
	if err := nonces.PutNonce(ctx, stale); err != nil {
		t.Fatal(err)
	}
	sigHex := "0x" + hex.EncodeToString(wallet.SignPersonal(key, domain.LoginMessage(stale.Value)))

	if _, _, err := svc.Login(ctx, addr.String(), sigHex); !errors.Is(err, auth.ErrNonceExpired) {
		t.Fatalf("error = %v, want ErrNonceExpired", err)
	}
	if _, ok, _ := nonces.GetNonce(ctx, addr); ok {
		t.Fatal("expired nonce was not cleaned up")
	}
}

func TestLogin_WrongSigner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	key, _ := wallet.GenerateKey()
	other, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())

	_, _, msg, err := svc.Challenge(ctx, addr.String())
	if err != nil {
		t.Fatal(err)
	}
	sigHex := "0x" + hex.EncodeToString(wallet.SignPersonal(other, msg))

	if _, _, err := svc.Login(ctx, addr.String(), sigHex); !errors.Is(err, auth.ErrSignatureMismatch) {
		t.Fatalf("error = %v, want ErrSignatureMismatch", err)
	}
}

func TestLogin_RetryAfterBadSignature(t *testing.T) {
	ctx := context.Background()
	svc, _, nonces := newService(t)

	key, _ := wallet.GenerateKey()
	other, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())

	_, _, msg, err := svc.Challenge(ctx, addr.String())
	if err != nil {
		t.Fatal(err)
	}

	// A fumbled signature must not consume the challenge.
	badSig := "0x" + hex.EncodeToString(wallet.SignPersonal(other, msg))
	if _, _, err := svc.Login(ctx, addr.String(), badSig); !errors.Is(err, auth.ErrSignatureMismatch) {
		t.Fatalf("bad signature error = %v, want ErrSignatureMismatch", err)
	}
	if _, ok, _ := nonces.GetNonce(ctx, addr); !ok {
		t.Fatal("nonce was consumed by a failed attempt")
	}

	goodSig := "0x" + hex.EncodeToString(wallet.SignPersonal(key, msg))
	if _, _, err := svc.Login(ctx, addr.String(), goodSig); err != nil {
		t.Fatalf("retry with correct signature: %v", err)
	}
	if _, ok, _ := nonces.GetNonce(ctx, addr); ok {
		t.Fatal("nonce survived a successful login")
	}
}

func TestLogin_AdminPromotion(t *testing.T) {
	ctx := context.Background()
	users, nonces := newMemUsers(), newMemNonces()
	signer := auth.NewTokenSigner([]byte("test-secret"), time.Hour)

	key, _ := wallet.GenerateKey()
	addr := wallet.AddressFromPubKey(key.PubKey())
	// Admin list entries may come in any case.
	svc := auth.NewService(users, nonces, signer, []string{strings.ToUpper(addr.String())})

	_, _, msg, err := svc.Challenge(ctx, addr.String())
	if err != nil {
		t.Fatal(err)
	}
	_, user, err := svc.Login(ctx, addr.String(), "0x"+hex.EncodeToString(wallet.SignPersonal(key, msg)))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Errorf("role = %v, want admin", user.Role)
	}
}

func TestTokenSigner_RejectsTampering(t *testing.T) {
	signer := auth.NewTokenSigner([]byte("secret-a"), time.Hour)
	token, err := signer.Issue("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.Subject(token); err != nil {
		t.Fatalf("subject: %v", err)
	}

	other := auth.NewTokenSigner([]byte("secret-b"), time.Hour)
	if _, err := other.Subject(token); !errors.Is(err, auth.ErrBadToken) {
		t.Fatalf("wrong secret error = %v, want ErrBadToken", err)
	}
	if _, err := signer.Subject(token + "x"); !errors.Is(err, auth.ErrBadToken) {
		t.Fatalf("mangled token error = %v, want ErrBadToken", err)
	}
}

func TestTokenSigner_Expiry(t *testing.T) {
	signer := auth.NewTokenSigner([]byte("secret"), time.Minute)
	token, err := signer.Issue("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.Subject(token); !errors.Is(err, auth.ErrBadToken) {
		t.Fatalf("expired token error = %v, want ErrBadToken", err)
	}
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		role domain.Role
		perm string
		want bool
	}{
		{domain.RoleViewer, auth.PermFilesRead, true},
		{domain.RoleViewer, auth.PermFilesWrite, false},
		{domain.RoleOwner, auth.PermFilesWrite, true},
		{domain.RoleOwner, auth.PermFilesShare, true},
		{domain.RoleOwner, auth.PermAdmin, false},
		{domain.RoleAdmin, auth.PermAdmin, true},
		{domain.RoleAdmin, auth.PermFilesRead, true},
		{domain.RoleOwner, "no:such:perm", false},
	}
	for _, c := range cases {
		if got := auth.Allowed(c.role, c.perm); got != c.want {
			t.Errorf("Allowed(%v, %q) = %v, want %v", c.role, c.perm, got, c.want)
		}
	}
}
