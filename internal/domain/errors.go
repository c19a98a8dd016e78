package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or the caller
	// may not learn that it does.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller's role does not permit the
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrShareExpired is returned when a share exists but has lapsed.
	ErrShareExpired = errors.New("share expired")

	// ErrBlobMissing is returned when a file record exists but its
	// encrypted blob is gone and could not be recovered.
	ErrBlobMissing = errors.New("encrypted blob missing")

	// ErrBadKey is returned when decryption fails, which covers both a
	// wrong passphrase and corrupted ciphertext.
	ErrBadKey = errors.New("decryption failed (bad key or corrupted data)")

	// ErrNoSharingKey is returned when a share recipient has not
	// registered an RSA public key.
	ErrNoSharingKey = errors.New("recipient has not registered a sharing public key")

	// ErrSelfShare is returned when an owner tries to share with
	// themselves.
	ErrSelfShare = errors.New("cannot share with yourself")
)
