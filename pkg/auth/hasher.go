package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns passwords into stored hashes and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher stores bcrypt hashes. Zero Cost means bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Join(ErrHashPassword, err)
	}
	return string(b), nil
}

func (BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DigestHasher is for clients that send an already hashed password: the
// value is stored and compared as is.
type DigestHasher struct{}

func (DigestHasher) Hash(digest string) (string, error) { return digest, nil }

func (DigestHasher) Compare(hash, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(digest)) == 1
}
