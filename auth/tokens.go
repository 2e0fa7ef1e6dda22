package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/junaidrashid-git/storefront-api/config"
)

const (
	RoleUser  = "user"
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

var (
	ErrMissingToken = errors.New("authorization header is missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims covers both Supabase access tokens and guest tokens. Subject is the owner id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller
type Identity struct {
	ID    string
	Email string
	Role  string
}

// IsGuest reports whether the caller only holds a guest token
func (i Identity) IsGuest() bool {
	return i.Role == RoleGuest
}

// Verifier checks Supabase and guest tokens, and issues guest tokens
type Verifier struct {
	supabaseSecret []byte
	guestSecret    []byte
	guestTTL       time.Duration
}

func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{
		supabaseSecret: []byte(cfg.SupabaseSecret),
		guestSecret:    []byte(cfg.GuestSecret),
		guestTTL:       cfg.GuestTTL,
	}
}

// BearerToken strips an optional "Bearer " prefix from an Authorization header
func BearerToken(header string) (string, error) {
	token := strings.TrimSpace(header)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func (v *Verifier) parse(tokenString string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyUser accepts only Supabase access tokens of signed-in users
func (v *Verifier) VerifyUser(tokenString string) (Identity, error) {
	claims, err := v.parse(tokenString, v.supabaseSecret)
	if err != nil {
		return Identity{}, err
	}
	if claims.Role == RoleGuest || claims.Role == "anon" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: claims.Subject, Email: claims.Email, Role: RoleUser}, nil
}

// VerifyGuest accepts only tokens issued by IssueGuest
func (v *Verifier) VerifyGuest(tokenString string) (Identity, error) {
	claims, err := v.parse(tokenString, v.guestSecret)
	if err != nil {
		return Identity{}, err
	}
	if claims.Role != RoleGuest {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: claims.Subject, Role: RoleGuest}, nil
}

// VerifyShopper accepts a user token, falling back to a guest token
func (v *Verifier) VerifyShopper(tokenString string) (Identity, error) {
	if id, err := v.VerifyUser(tokenString); err == nil {
		return id, nil
	}
	return v.VerifyGuest(tokenString)
}

// IssueGuest signs a guest token for guestID
func (v *Verifier) IssueGuest(guestID string, now time.Time) (string, time.Time, error) {
	if len(v.guestSecret) == 0 {
		return "", time.Time{}, errors.New("guest token secret is not configured")
	}
	expiresAt := now.Add(v.guestTTL)
	claims := Claims{
		Role: RoleGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.guestSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
