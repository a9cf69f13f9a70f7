package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "unicode password", password: "senhaçãoé"},
		{name: "empty password", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := GetHash(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyPassword)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, gotHash)
			assert.NoError(t, CompareHash(gotHash, tt.password))
		})
	}
}

func TestCompareHash(t *testing.T) {
	correctHash, err := GetHash("correct_password")
	require.NoError(t, err)

	tests := []struct {
		name        string
		hash        string
		password    string
		shouldMatch bool
	}{
		{name: "matching password", hash: correctHash, password: "correct_password", shouldMatch: true},
		{name: "wrong password", hash: correctHash, password: "wrong_password"},
		{name: "empty password", hash: correctHash, password: ""},
		{name: "not a bcrypt hash", hash: "plain", password: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if tt.shouldMatch {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCompareHash_MismatchIsDetectable(t *testing.T) {
	hash, err := GetHash("one")
	require.NoError(t, err)

	err = CompareHash(hash, "two")
	assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
}

func TestGetHash_Salted(t *testing.T) {
	hash1, err := GetHash("same")
	require.NoError(t, err)
	hash2, err := GetHash("same")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)
}
