package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a diner, restaurant or admin password with
// bcrypt.  A cost outside bcrypt's valid range falls back to the
// library default, so a zero-value config still produces usable
// hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Character classes for temporary passwords.  Ambiguous characters
// (O, 0, I, l, 1) are left out since the password arrives by email
// and gets retyped.
const (
	tempLower   = "abcdefghijkmnopqrstuvwxyz"
	tempUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	tempDigits  = "23456789"
	tempSymbols = "!@#$%^&*-_=+?"
	tempLength  = 16
)

// NewTempPassword returns the password mailed to a restaurant when
// the admin approves its registration.  It draws at least one
// character from each class and shuffles, so the result survives
// naive complexity checks until the owner changes it.
func NewTempPassword() (string, error) {
	classes := []string{tempLower, tempUpper, tempDigits, tempSymbols}
	pool := tempLower + tempUpper + tempDigits + tempSymbols

	chars := make([]byte, 0, tempLength)
	for _, set := range classes {
		i, err := randomIndex(len(set))
		if err != nil {
			return "", err
		}
		chars = append(chars, set[i])
	}
	for len(chars) < tempLength {
		i, err := randomIndex(len(pool))
		if err != nil {
			return "", err
		}
		chars = append(chars, pool[i])
	}
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
