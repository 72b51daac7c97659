package account

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/scrypt"
)

// knownHash builds a credential the way the legacy seed script did.
func knownHash(t *testing.T, salt, password string) string {
	t.Helper()
	key, err := scrypt.Key([]byte(password), []byte(salt), 16384, 8, 1, 64)
	require.NoError(t, err)
	return salt + ":" + hex.EncodeToString(key)
}

func TestVerifyPassword_KnownCredential(t *testing.T) {
	stored := knownHash(t, "a1b2c3d4e5f60718", "shuriken-2026")

	assert.True(t, VerifyPassword("shuriken-2026", stored))
	assert.False(t, VerifyPassword("shuriken-2025", stored))
	assert.False(t, VerifyPassword("", stored))
}

func TestVerifyPassword_MalformedStoredValue(t *testing.T) {
	cases := map[string]string{
		"no separator":  "deadbeefcafebabe",
		"empty":         "",
		"empty salt":    ":abcdef",
		"empty hash":    "abcdef:",
		"only colon":    ":",
		"truncated key": "salt:" + strings.Repeat("0", 10),
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, VerifyPassword("anything", stored))
		})
	}
}

func TestVerifyPassword_HashWithExtraColon(t *testing.T) {
	stored := knownHash(t, "salty", "pw")
	// Anything after the first separator is the hash; a trailing field breaks the match.
	assert.False(t, VerifyPassword("pw", stored+":extra"))
}

func TestHashPassword_RoundTrip(t *testing.T) {
	stored, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	salt, hash, ok := strings.Cut(stored, ":")
	require.True(t, ok)
	assert.Len(t, salt, 32)
	assert.Len(t, hash, 128)

	assert.True(t, VerifyPassword("correct horse battery staple", stored))
	assert.False(t, VerifyPassword("correct horse battery stapler", stored))
}

func TestHashPassword_RandomSalt(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestAccountCheckPassword(t *testing.T) {
	a := Account{ID: 1, Correo: "admin@bogota.ninja", PasswordHash: knownHash(t, "s4lt", "secreto")}
	assert.NoError(t, a.CheckPassword("secreto"))
	assert.ErrorIs(t, a.CheckPassword("otro"), ErrWrongPassword)
}

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{name: "valid", account: Account{Correo: "a@b.com", PasswordHash: "s:h"}},
		{name: "empty correo", account: Account{PasswordHash: "s:h"}, wantErr: ErrEmptyCorreo},
		{name: "invalid correo", account: Account{Correo: "admin", PasswordHash: "s:h"}, wantErr: ErrInvalidCorreo},
		{name: "missing hash", account: Account{Correo: "a@b.com"}, wantErr: ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
