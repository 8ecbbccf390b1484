package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/bloglist/internal/apperror"
	"github.com/ayush/bloglist/internal/models"
)

// Passwords hashes and verifies user secrets with bcrypt.
type Passwords struct {
	cost      int
	dummyHash []byte
}

// NewPasswords returns a verifier hashing at cost. When dummyHash is empty
// a random one is generated so that lookups for unknown users still pay
// the full bcrypt price. A supplied dummyHash must be hashed at cost.
func NewPasswords(cost int, dummyHash string) (*Passwords, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	p := &Passwords{cost: cost, dummyHash: []byte(dummyHash)}
	if dummyHash == "" {
		secret := make([]byte, 16)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("dummy secret: %w", err)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(secret)), cost)
		if err != nil {
			return nil, fmt.Errorf("dummy hash: %w", err)
		}
		p.dummyHash = h
		return p, nil
	}
	dummyCost, err := bcrypt.Cost(p.dummyHash)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	if dummyCost != cost {
		return nil, fmt.Errorf("dummy hash cost %d does not match bcrypt cost %d", dummyCost, cost)
	}
	return p, nil
}

// Hash returns the bcrypt hash of plain.
func (p *Passwords) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), p.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation("password", "max", "password too long")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify reports whether plain matches hash.
func (p *Passwords) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Authenticate checks plain against u's stored hash. A nil user is checked
// against the dummy hash and always fails, taking the same time as a wrong
// password would.
func (p *Passwords) Authenticate(u *models.User, plain string) bool {
	if u == nil {
		bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plain))
		return false
	}
	return p.Verify(plain, u.PasswordHash)
}
