// Password hashing. Two formats are supported:
//
//   - sha256: a single unsalted SHA-256 pass, hex encoded. This is what
//     existing board data files contain. It is fast and therefore weak
//     against offline cracking; keep it only for compatibility.
//   - bcrypt: salted, deliberately slow. Output looks like
//     $2a$12$<22-char salt><31-char hash>.
//
// Verify recognises both formats regardless of which one new hashes use, so
// a store can switch schemes without locking anybody out.

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/kanban-board/internal/apperror"
)

// Scheme names accepted by NewPasswordService.
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// defaultCost is the bcrypt work factor (~250ms per hash on a modern server).
const defaultCost = 12

const bcryptMaxBytes = 72

// ErrInvalidPassword is returned by Verify on any mismatch, including an
// empty stored hash.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService hashes and verifies passwords.
type PasswordService struct {
	scheme string
	cost   int
}

// NewPasswordService returns a service that hashes with scheme. cost is only
// used for bcrypt; 0 selects the default.
func NewPasswordService(scheme string, cost int) (*PasswordService, error) {
	switch scheme {
	case SchemeSHA256:
	case SchemeBcrypt:
		if cost == 0 {
			cost = defaultCost
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return nil, fmt.Errorf("auth: unknown password scheme %q", scheme)
	}
	return &PasswordService{scheme: scheme, cost: cost}, nil
}

// NewPasswordServiceForTest creates a bcrypt PasswordService with the given
// (low) cost. Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{scheme: SchemeBcrypt, cost: cost}
}

// Hash hashes the plaintext with the configured scheme.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if p.scheme == SchemeSHA256 {
		return sha256Hex(plaintext), nil
	}

	// bcrypt rejects inputs over 72 bytes. The limit is bytes, not runes,
	// so a short password in a multibyte script can still exceed it.
	if len(plaintext) > bcryptMaxBytes {
		return "", apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be %d bytes or fewer", bcryptMaxBytes))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored hash of either format. It returns
// nil on a match and ErrInvalidPassword (possibly wrapped) otherwise.
func (p *PasswordService) Verify(hash, plaintext string) error {
	switch {
	case hash == "":
		return ErrInvalidPassword
	case strings.HasPrefix(hash, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
		if err == nil {
			return nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("%w: comparing bcrypt hash: %v", ErrInvalidPassword, err)
	default:
		want := []byte(strings.ToLower(hash))
		got := []byte(sha256Hex(plaintext))
		if subtle.ConstantTimeCompare(want, got) == 1 {
			return nil
		}
		return ErrInvalidPassword
	}
}

// Scheme reports the scheme used for new hashes.
func (p *PasswordService) Scheme() string { return p.scheme }

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
