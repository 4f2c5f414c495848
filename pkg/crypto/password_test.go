package crypto

import (
	"bytes"
	"testing"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if bytes.Contains(hash, []byte("secret123")) {
		t.Fatal("hash must not embed the plaintext")
	}

	if err := ComparePassword(hash, "secret123"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "secret124"); err == nil {
		t.Fatal("expected mismatch for different plaintext")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if bytes.Equal(h1, h2) {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestCompareMalformedHashFailsClosed(t *testing.T) {
	if err := ComparePassword([]byte("not-a-bcrypt-hash"), "secret123"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
