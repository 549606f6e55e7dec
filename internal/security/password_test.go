package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("study-hard-123")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "study-hard-123" {
		t.Fatal("hash should not equal the plaintext")
	}

	if !CheckPassword("study-hard-123", hash) {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() should reject an incorrect password")
	}
	if CheckPassword("study-hard-123", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() should reject a malformed hash")
	}
}

func TestGenerateSessionIDUnique(t *testing.T) {
	a := GenerateSessionID()
	b := GenerateSessionID()
	if a == b {
		t.Error("session IDs should be unique")
	}
	if len(a) != 36 {
		t.Errorf("session ID length = %d, want 36 (UUID)", len(a))
	}
}
