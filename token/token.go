// Package token mints, verifies and rotates the access/refresh token pair.
//
// Tokens are signed HS256 JWTs that are additionally encrypted with the
// field cipher before leaving the process and before being stored on the
// user record. The double wrap is a compatibility requirement of the wire
// format, not a hardening measure: clients only ever see the encrypted
// form, and refresh verification matches that encrypted form byte for byte
// against the stored value.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"elibro/crypto"
	"elibro/models"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry. Clients should refresh.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid means the token could not be decrypted, parsed or
	// matched. Clients should re-authenticate.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the public user projection inside both token kinds.
type Claims struct {
	User models.PublicUser `json:"user"`
	jwt.RegisteredClaims
}

// SessionStore is the slice of the user repository the service needs to
// persist rotation and revocation.
type SessionStore interface {
	SetRefreshToken(ctx context.Context, userID, encryptedToken string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	GetUserByRefreshToken(ctx context.Context, encryptedToken string) (*models.User, error)
}

type Service struct {
	store         SessionStore
	cipher        *crypto.FieldCipher
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(store SessionStore, cipher *crypto.FieldCipher, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		store:         store,
		cipher:        cipher,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccessToken returns a short-lived encrypted access token for user.
func (s *Service) IssueAccessToken(user *models.User) (string, error) {
	return s.sign(user, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken returns a long-lived encrypted refresh token and
// persists it on the user record, overwriting any prior value. This is the
// rotation point: the previous refresh token stops verifying as soon as
// the new one is stored.
func (s *Service) IssueRefreshToken(ctx context.Context, user *models.User) (string, error) {
	encrypted, err := s.sign(user, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return "", err
	}
	if err := s.store.SetRefreshToken(ctx, user.ID, encrypted); err != nil {
		return "", err
	}
	user.RefreshToken = encrypted
	return encrypted, nil
}

// VerifyAccessToken decrypts and validates an access token. Expiry is
// checked against wall-clock time and reported as ErrTokenExpired; every
// other failure is ErrTokenInvalid.
func (s *Service) VerifyAccessToken(encryptedToken string) (*Claims, error) {
	return s.verify(encryptedToken, s.accessSecret)
}

// VerifyRefreshToken resolves the user whose stored refresh token equals
// the presented one, then validates the underlying JWT. A token that was
// rotated away no longer matches any record and fails as invalid.
func (s *Service) VerifyRefreshToken(ctx context.Context, encryptedToken string) (*models.User, *Claims, error) {
	if encryptedToken == "" {
		return nil, nil, ErrTokenInvalid
	}
	user, err := s.store.GetUserByRefreshToken(ctx, encryptedToken)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrTokenInvalid
	}
	claims, err := s.verify(user.RefreshToken, s.refreshSecret)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Revoke clears the stored refresh token, ending the user's session.
func (s *Service) Revoke(ctx context.Context, user *models.User) error {
	if err := s.store.ClearRefreshToken(ctx, user.ID); err != nil {
		return err
	}
	user.RefreshToken = ""
	return nil
}

func (s *Service) sign(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	// The jti keeps same-second issuances for one user distinct. iat/exp
	// only have second precision and the cipher is deterministic, so
	// without it two tokens minted in the same second would be
	// byte-identical and rotation would not rotate.
	claims := Claims{
		User: user.Public(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newJTI(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", err
	}
	return s.cipher.Encrypt(signed), nil
}

func newJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *Service) verify(encryptedToken string, secret []byte) (*Claims, error) {
	raw, err := s.cipher.Decrypt(encryptedToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
