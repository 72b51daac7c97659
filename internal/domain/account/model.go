package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Max length constants for admin fields.
const (
	MaxCorreoLength = 254
)

// scrypt parameters. KeyLength matches the stored 64-byte hash.
const (
	scryptN   = 16384
	scryptR   = 8
	scryptP   = 1
	KeyLength = 64
	saltBytes = 16
)

// Domain errors
var (
	ErrEmptyCorreo   = errors.New("correo cannot be empty")
	ErrInvalidCorreo = errors.New("correo must contain '@'")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrWrongPassword = errors.New("incorrect password")
)

// Account is an admin credential. Read-only for request handling.
type Account struct {
	ID           int64
	Correo       string
	PasswordHash string // <salt_hex>:<hash_hex>
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Correo) == "" {
		return ErrEmptyCorreo
	}
	if len(a.Correo) > MaxCorreoLength {
		return errors.New("correo cannot exceed 254 characters")
	}
	if !strings.Contains(a.Correo, "@") {
		return ErrInvalidCorreo
	}
	if a.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if !VerifyPassword(plaintext, a.PasswordHash) {
		return ErrWrongPassword
	}
	return nil
}

// HashPassword derives a new <salt_hex>:<hash_hex> credential with a random salt.
// PRE: plaintext is non-empty
// POST: Returned value verifies with VerifyPassword(plaintext, value)
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(raw)
	key, err := scrypt.Key([]byte(plaintext), []byte(salt), scryptN, scryptR, scryptP, KeyLength)
	if err != nil {
		return "", err
	}
	return salt + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword recomputes scrypt(plain, salt, 64) and compares it to the stored hash
// in constant time. The salt string is used as-is, not hex-decoded.
// Any malformed input or computation error returns false.
func VerifyPassword(plain, stored string) bool {
	salt, hash, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || hash == "" {
		return false
	}
	key, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, KeyLength)
	if err != nil {
		return false
	}
	attempt := hex.EncodeToString(key)
	return subtle.ConstantTimeCompare([]byte(attempt), []byte(hash)) == 1
}
