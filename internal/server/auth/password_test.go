package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if digest == "secret1" {
		t.Fatalf("digest must not equal plaintext")
	}
	if !h.Verify("secret1", digest) {
		t.Fatalf("expected password to verify against its digest")
	}
	if h.Verify("wrong", digest) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestPasswordHasher_SaltedDigestsDiffer(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same input must differ (random salt)")
	}
}

func TestNewPasswordHasher_CostOutOfRangeFallsBack(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(99)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected fallback to default cost, got %d", h.cost)
	}
}
