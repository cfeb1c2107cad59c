package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elibro/crypto"
)

func TestSetAndCheckPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("Secret123!"))

	assert.NotEmpty(t, u.Salt)
	assert.NotEqual(t, "Secret123!", u.Password)

	assert.True(t, u.CheckPassword("Secret123!"))
	assert.False(t, u.CheckPassword("secret123!"))
	assert.False(t, u.CheckPassword(u.Password))
}

func TestSetPasswordRegeneratesSalt(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("Secret123!"))
	oldSalt, oldHash := u.Salt, u.Password

	require.NoError(t, u.SetPassword("Another456$"))
	assert.NotEqual(t, oldSalt, u.Salt)
	assert.NotEqual(t, oldHash, u.Password)

	assert.False(t, u.CheckPassword("Secret123!"))
	assert.True(t, u.CheckPassword("Another456$"))
}

func TestEncryptDecryptFields(t *testing.T) {
	cipher, err := crypto.NewFieldCipher("model-test-secret")
	require.NoError(t, err)

	u := &User{Fullname: "Jane Doe", Email: "jane@x.com"}
	u.EncryptFields(cipher)
	assert.NotEqual(t, "Jane Doe", u.Fullname)
	assert.NotEqual(t, "jane@x.com", u.Email)

	require.NoError(t, u.DecryptFields(cipher))
	assert.Equal(t, "Jane Doe", u.Fullname)
	assert.Equal(t, "jane@x.com", u.Email)
}

func TestPublicProjectionOmitsSecrets(t *testing.T) {
	created := time.Now().UTC()
	u := &User{
		ID:           "42",
		Fullname:     "Jane Doe",
		Email:        "jane@x.com",
		Password:     "hash",
		Salt:         "salt",
		Role:         RoleAdmin,
		RefreshToken: "enc-token",
		CreatedAt:    created,
	}

	p := u.Public()
	assert.Equal(t, PublicUser{
		ID:        "42",
		Fullname:  "Jane Doe",
		Email:     "jane@x.com",
		Role:      RoleAdmin,
		CreatedAt: created,
	}, p)
}

func TestHasActiveSession(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasActiveSession())
	u.RefreshToken = "enc-token"
	assert.True(t, u.HasActiveSession())
}

func TestNewID(t *testing.T) {
	first := NewID()
	second := NewID()
	assert.Len(t, first, 24)
	assert.NotEqual(t, first, second)
}
