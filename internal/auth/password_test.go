package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	passwords := []string{"pw123", "", "çok gizli parola", "a-much-longer-passphrase-with-symbols-!@#"}

	for _, p := range passwords {
		hash, err := HashPassword(p, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword(%q) error = %v", p, err)
		}
		if hash == p {
			t.Fatalf("HashPassword(%q) returned plaintext", p)
		}
		if !VerifyPassword(hash, p) {
			t.Errorf("VerifyPassword(hash(%q), %q) = false", p, p)
		}
		for _, q := range passwords {
			if q == p {
				continue
			}
			if VerifyPassword(hash, q) {
				t.Errorf("VerifyPassword(hash(%q), %q) = true", p, q)
			}
		}
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$04$short"} {
		if VerifyPassword(hash, "pw123") {
			t.Errorf("VerifyPassword(%q) = true", hash)
		}
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw123", 99)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}
