package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("correct password should verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Error("wrong password must not verify")
	}
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	first, err := HashPassword("secret1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("secret1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "wrong algorithm", encoded: "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "missing sections", encoded: "$argon2id$v=19$c2FsdA"},
		{name: "bad base64", encoded: "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyPassword("anything", tt.encoded); err != ErrInvalidHash {
				t.Errorf("VerifyPassword = %v, want ErrInvalidHash", err)
			}
		})
	}
}
