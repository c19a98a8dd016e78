package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"blockvault/internal/domain"
	"blockvault/internal/wallet"
)

// NonceTTL is how long a login challenge stays valid.
const NonceTTL = 5 * time.Minute

var (
	// ErrNoNonce means login was attempted without requesting a challenge,
	// or the challenge was already consumed.
	ErrNoNonce = errors.New("no active login nonce")
	// ErrNonceExpired means the challenge outlived its TTL.
	ErrNonceExpired = errors.New("login nonce expired")
	// ErrSignatureMismatch means the signature recovers to a different
	// wallet than the one logging in.
	ErrSignatureMismatch = errors.New("signature does not match address")
)

// Service runs the challenge/response login flow and resolves bearer tokens
// back to accounts.
type Service struct {
	users  domain.UserStore
	nonces domain.NonceStore
	signer *TokenSigner
	admins map[string]struct{}
	now    func() time.Time
}

// NewService wires the login flow. admins lists wallet addresses promoted to
// the admin role on login, in any letter case.
func NewService(users domain.UserStore, nonces domain.NonceStore, signer *TokenSigner, admins []string) *Service {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		set[strings.ToLower(a)] = struct{}{}
	}
	return &Service{users: users, nonces: nonces, signer: signer, admins: set, now: time.Now}
}

// Challenge issues a fresh single-use nonce for rawAddr and returns the
// checksummed address plus the exact message the wallet must sign. A new
// challenge replaces any pending one for the same address.
func (s *Service) Challenge(ctx context.Context, rawAddr string) (addr domain.Address, nonce, message string, err error) {
	addr, err = wallet.ChecksumAddress(rawAddr)
	if err != nil {
		return "", "", "", err
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}
	value := hex.EncodeToString(buf)
	n := domain.Nonce{Address: addr, Value: value, CreatedAt: s.now().Unix()}
	if err := s.nonces.PutNonce(ctx, n); err != nil {
		return "", "", "", err
	}
	return addr, value, domain.LoginMessage(value), nil
}

// Login verifies the EIP-191 signature over the pending nonce's login
// message and returns a bearer token plus the account record. The nonce is
// consumed only once the signature matches, so a wallet that fumbles a
// signature may retry against the same challenge until it expires.
func (s *Service) Login(ctx context.Context, rawAddr, sigHex string) (string, domain.User, error) {
	addr, err := wallet.ChecksumAddress(rawAddr)
	if err != nil {
		return "", domain.User{}, err
	}
	n, ok, err := s.nonces.GetNonce(ctx, addr)
	if err != nil {
		return "", domain.User{}, err
	}
	if !ok {
		return "", domain.User{}, ErrNoNonce
	}

	now := s.now()
	if now.Unix()-n.CreatedAt > int64(NonceTTL.Seconds()) {
		_ = s.nonces.DeleteNonce(ctx, addr)
		return "", domain.User{}, ErrNonceExpired
	}
	sig, err := wallet.ParseSignatureHex(sigHex)
	if err != nil {
		return "", domain.User{}, err
	}
	signer, err := wallet.RecoverPersonal(domain.LoginMessage(n.Value), sig)
	if err != nil {
		return "", domain.User{}, err
	}
	if !signer.Equal(addr) {
		return "", domain.User{}, ErrSignatureMismatch
	}
	if err := s.nonces.DeleteNonce(ctx, addr); err != nil {
		return "", domain.User{}, err
	}

	user, err := s.users.UpsertUser(ctx, addr)
	if err != nil {
		return "", domain.User{}, err
	}
	if user, err = s.applyAdmin(ctx, user); err != nil {
		return "", domain.User{}, err
	}
	token, err := s.signer.Issue(addr, now)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to its account.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	addr, err := s.signer.Subject(token)
	if err != nil {
		return domain.User{}, err
	}
	user, ok, err := s.users.GetUser(ctx, addr)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrBadToken
	}
	return s.applyAdmin(ctx, user)
}

// SetSharingKey publishes the account's RSA sharing public key.
func (s *Service) SetSharingKey(ctx context.Context, addr domain.Address, pemKey string) error {
	return s.users.SetSharingKey(ctx, addr, pemKey)
}

// applyAdmin promotes configured admin wallets, persisting the role change
// the first time it is observed.
func (s *Service) applyAdmin(ctx context.Context, u domain.User) (domain.User, error) {
	if _, isAdmin := s.admins[strings.ToLower(u.Address.String())]; !isAdmin || u.Role == domain.RoleAdmin {
		return u, nil
	}
	if err := s.users.SetRole(ctx, u.Address, domain.RoleAdmin); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.RoleAdmin
	return u, nil
}
