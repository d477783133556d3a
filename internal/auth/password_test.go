package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/sakif/kanban-board/internal/apperror"
)

// =========================================================================
// HELPERS
// =========================================================================

// Cost 4 is the minimum bcrypt allows; tests run in milliseconds.
func newTestBcrypt() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func newTestSHA256(t *testing.T) *PasswordService {
	t.Helper()
	ps, err := NewPasswordService(SchemeSHA256, 0)
	if err != nil {
		t.Fatalf("NewPasswordService() error = %v", err)
	}
	return ps
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewPasswordService(t *testing.T) {
	tests := []struct {
		name    string
		scheme  string
		cost    int
		wantErr bool
	}{
		{"sha256", SchemeSHA256, 0, false},
		{"bcrypt default cost", SchemeBcrypt, 0, false},
		{"bcrypt explicit cost", SchemeBcrypt, 10, false},
		{"bcrypt cost too high", SchemeBcrypt, 99, true},
		{"unknown scheme", "md5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordService(tt.scheme, tt.cost)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPasswordService(%q, %d) error = %v, wantErr %v", tt.scheme, tt.cost, err, tt.wantErr)
			}
		})
	}
}

// =========================================================================
// SHA-256
// =========================================================================

func TestSHA256_KnownVector(t *testing.T) {
	ps := newTestSHA256(t)

	hash, err := ps.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	// echo -n secret1 | sha256sum
	want := "5b11618c2e44027877d0cd0921ed166b9f176f50587fc91e7534dd2946db77d6"
	if hash != want {
		t.Errorf("Hash() = %q, want %q", hash, want)
	}
}

func TestSHA256_IsDeterministic(t *testing.T) {
	ps := newTestSHA256(t)

	h1, _ := ps.Hash("same-password")
	h2, _ := ps.Hash("same-password")
	if h1 != h2 {
		t.Error("sha256 hashes of the same password should be identical")
	}
}

func TestSHA256_Verify(t *testing.T) {
	ps := newTestSHA256(t)
	hash, _ := ps.Hash("secret1")

	if err := ps.Verify(hash, "secret1"); err != nil {
		t.Errorf("Verify() correct password error = %v", err)
	}
	if err := ps.Verify(strings.ToUpper(hash), "secret1"); err != nil {
		t.Errorf("Verify() should accept upper-case hex, got %v", err)
	}
	if err := ps.Verify(hash, "secret2"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() wrong password error = %v, want ErrInvalidPassword", err)
	}
}

// =========================================================================
// BCRYPT
// =========================================================================

func TestBcrypt_OutputLooksBcrypt(t *testing.T) {
	ps := newTestBcrypt()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestBcrypt_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestBcrypt()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestBcrypt_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := newTestBcrypt()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"72 ASCII bytes", strings.Repeat("a", 72), false},
		{"73 ASCII bytes", strings.Repeat("a", 73), true},
		// 30 runes, 90 bytes
		{"short multibyte password", strings.Repeat("日", 30), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ps.Hash(tt.password)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Hash() error = %v", err)
				}
				return
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Hash() error = %v, want a validation error", err)
			}
		})
	}
}

func TestSHA256_HasNoLengthLimit(t *testing.T) {
	ps := newTestSHA256(t)
	long := strings.Repeat("pässwörd", 40)

	hash, err := ps.Hash(long)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := ps.Verify(hash, long); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestBcrypt_Verify(t *testing.T) {
	ps := newTestBcrypt()
	hash, _ := ps.Hash("correct-horse-battery-staple")

	if err := ps.Verify(hash, "correct-horse-battery-staple"); err != nil {
		t.Errorf("Verify() should return nil for a correct password, got: %v", err)
	}
	if err := ps.Verify(hash, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() wrong password error = %v, want ErrInvalidPassword", err)
	}
}

// =========================================================================
// CROSS-SCHEME
// =========================================================================

func TestVerify_AcceptsEitherFormat(t *testing.T) {
	shaSvc := newTestSHA256(t)
	bcryptSvc := newTestBcrypt()

	shaHash, _ := shaSvc.Hash("secret1")
	bcryptHash, _ := bcryptSvc.Hash("secret1")

	for name, ps := range map[string]*PasswordService{"sha256": shaSvc, "bcrypt": bcryptSvc} {
		t.Run(name, func(t *testing.T) {
			if err := ps.Verify(shaHash, "secret1"); err != nil {
				t.Errorf("Verify(sha256 hash) error = %v", err)
			}
			if err := ps.Verify(bcryptHash, "secret1"); err != nil {
				t.Errorf("Verify(bcrypt hash) error = %v", err)
			}
		})
	}
}

func TestVerify_EmptyHashNeverMatches(t *testing.T) {
	ps := newTestSHA256(t)

	if err := ps.Verify("", ""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify(\"\", \"\") error = %v, want ErrInvalidPassword", err)
	}
}

func TestVerify_GarbageBcryptHash(t *testing.T) {
	ps := newTestBcrypt()

	if err := ps.Verify("$2a$garbage", "password"); err == nil {
		t.Fatal("Verify() should return an error for a garbage hash")
	}
}
