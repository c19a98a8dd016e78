package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"blockvault/internal/crypto"
	"blockvault/internal/domain"
)

const (
	keystoreFilename = "keystore.json.enc"
	tokenFilename    = "token"
	keystoreAAD      = "blockvault-keystore"
)

// ErrNoKeystore is returned when the wallet has not been initialized yet.
var ErrNoKeystore = errors.New("keystore not initialized, run init first")

// Keystore holds the client-side secrets: the wallet private key and the
// RSA sharing key, sealed under a passphrase. The bearer token is cached
// next to it in plaintext, like an ssh-agent socket it is only as safe as
// the home directory.
type Keystore struct {
	dir string
	mu  sync.Mutex
}

// keystoreFile is the sealed payload.
type keystoreFile struct {
	Address    string `json:"address"`
	WalletKey  []byte `json:"wallet_key"`  // 32-byte secp256k1 scalar
	SharingKey string `json:"sharing_key"` // PKCS#8 PEM RSA private key
}

// NewKeystore returns a Keystore rooted at dir.
func NewKeystore(dir string) *Keystore {
	return &Keystore{dir: dir}
}

// Exists reports whether a keystore file is present.
func (s *Keystore) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, keystoreFilename))
	return err == nil
}

// Save seals the wallet scalar and RSA private key PEM under passphrase and
// writes them atomically.
func (s *Keystore) Save(passphrase string, addr domain.Address, walletKey []byte, sharingKeyPEM string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(keystoreFile{
		Address:    addr.String(),
		WalletKey:  walletKey,
		SharingKey: sharingKeyPEM,
	})
	if err != nil {
		return err
	}
	blob, err := crypto.Seal(passphrase, raw, keystoreAAD)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, keystoreFilename), blob, 0o600)
}

// Load opens the keystore with passphrase.
func (s *Keystore) Load(passphrase string) (domain.Address, []byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(filepath.Join(s.dir, keystoreFilename))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, "", ErrNoKeystore
	}
	if err != nil {
		return "", nil, "", err
	}
	raw, err := crypto.Open(passphrase, blob, keystoreAAD)
	if err != nil {
		return "", nil, "", err
	}
	var kf keystoreFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return "", nil, "", err
	}
	return domain.Address(kf.Address), kf.WalletKey, kf.SharingKey, nil
}

// SaveToken caches the bearer token from the last login.
func (s *Keystore) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, tokenFilename), []byte(token+"\n"), 0o600)
}

// LoadToken returns the cached bearer token, or "" when none is cached.
func (s *Keystore) LoadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(filepath.Join(s.dir, tokenFilename))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// ClearToken forgets the cached token.
func (s *Keystore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.dir, tokenFilename))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// writeFileAtomic writes via a temp file, then atomically replaces the
// target.
func writeFileAtomic(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
