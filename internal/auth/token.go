package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ayush/bloglist/internal/apperror"
)

// Claims is the signed token payload. No registered claims are set, so the
// encoded payload is exactly {username, id} and never expires.
type Claims struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	return &Tokens{secret: []byte(secret)}, nil
}

// Issue signs a token for the given user.
func (t *Tokens) Issue(id, username string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: username, ID: id})
	s, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks the signature of raw and returns its claims. The id is
// not checked against storage here.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperror.New(apperror.InvalidToken, "token invalid", err)
	}
	if claims.ID == "" {
		return nil, apperror.New(apperror.InvalidToken, "token has no id", nil)
	}
	return claims, nil
}
