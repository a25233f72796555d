// Package password hashes and verifies account passwords with bcrypt.
//
// A hash is the self-describing modular-crypt string produced by bcrypt
// ("$2a$<cost>$<22-char salt><31-char digest>"), so verification needs
// nothing but the stored string.
//
// bcrypt only reads the first 72 bytes of a password. Longer input is cut
// to that length before hashing and verifying, so hashes stay compatible
// with other bcrypt implementations that truncate the same way.
package password

import (
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest prefix bcrypt takes into account.
const MaxPasswordBytes = 72

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. A zero cost selects bcrypt.DefaultCost;
// other values are clamped to bcrypt's allowed range.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt hash of password. Any non-empty password
// is accepted.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrInvalidInput)
	}

	b, err := bcrypt.GenerateFromPassword(clip(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A malformed hash is a
// mismatch, not an error.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), clip(password)) == nil
}

func clip(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}
