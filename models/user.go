package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"elibro/crypto"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the stored account record. Fullname and Email are kept encrypted
// at rest; Password holds hex(SHA-256(plaintext+Salt)); RefreshToken holds
// the encrypted form of the most recently issued refresh token, and an
// empty value means no active session.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty" db:"id"`
	Fullname     string    `json:"fullname" bson:"fullname" db:"fullname"`
	Email        string    `json:"email" bson:"email" db:"email"`
	Password     string    `json:"-" bson:"password" db:"password"`
	Salt         string    `json:"-" bson:"salt" db:"salt"`
	Role         Role      `json:"role" bson:"role" db:"role"`
	RefreshToken string    `json:"-" bson:"refreshToken,omitempty" db:"refresh_token"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// PublicUser is the projection safe to embed in tokens and responses.
// It never carries the password, salt or refresh token.
type PublicUser struct {
	ID        string    `json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewID returns a fresh 24-hex-char record identifier.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Public returns the caller-visible projection of the user. The receiver
// is expected to hold decrypted fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Fullname:  u.Fullname,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// SetPassword regenerates the salt and stores the hash of plain.
func (u *User) SetPassword(plain string) error {
	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	u.Salt = salt
	u.Password = crypto.HashPassword(plain, salt)
	return nil
}

// CheckPassword reports whether plain matches the stored hash. Side-effect
// free.
func (u *User) CheckPassword(plain string) bool {
	return crypto.VerifyPassword(plain, u.Salt, u.Password)
}

// HasActiveSession reports whether a refresh token is currently stored.
func (u *User) HasActiveSession() bool {
	return u.RefreshToken != ""
}

// EncryptFields encrypts the PII fields in place before persisting.
func (u *User) EncryptFields(c *crypto.FieldCipher) {
	u.Fullname = c.Encrypt(u.Fullname)
	u.Email = c.Encrypt(u.Email)
}

// DecryptFields decrypts the PII fields in place after loading. Every read
// path out of the store must pass through here before the record is used.
func (u *User) DecryptFields(c *crypto.FieldCipher) error {
	fullname, err := c.Decrypt(u.Fullname)
	if err != nil {
		return err
	}
	email, err := c.Decrypt(u.Email)
	if err != nil {
		return err
	}
	u.Fullname = fullname
	u.Email = email
	return nil
}
