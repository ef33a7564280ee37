package service

import (
	"strings"
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := fastHasher()

	hash, err := hasher.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if hash == "Sup3rSecret" {
		t.Error("Expected hash to differ from plaintext")
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Expected bcrypt hash format, got %q", hash[:4])
	}

	if !hasher.Verify("Sup3rSecret", hash) {
		t.Error("Expected correct password to verify")
	}

	if hasher.Verify("wrong-password", hash) {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	hasher := fastHasher()

	first, err := hasher.Hash("SamePassword1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("SamePassword1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Error("Expected two hashes of the same password to differ")
	}
}

func TestNewPasswordHasher_CostOutOfRange(t *testing.T) {
	// Out-of-range costs fall back to a usable default instead of failing
	// at hash time
	hasher := NewPasswordHasher(99)

	hash, err := hasher.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash returned error with clamped cost: %v", err)
	}
	if !hasher.Verify("Sup3rSecret", hash) {
		t.Error("Expected round-trip with clamped cost to verify")
	}
}

func TestPasswordHasher_VerifyGarbageHash(t *testing.T) {
	hasher := fastHasher()

	if hasher.Verify("anything", "not-a-bcrypt-hash") {
		t.Error("Expected verification against a malformed hash to fail")
	}
}
